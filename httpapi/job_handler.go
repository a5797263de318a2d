package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/jobsearch"
	"github.com/korylprince/jobmatch-server/matching"
)

//Scorer scores jobs against a resume
type Scorer interface {
	Score(ctx context.Context, resumeText string, jobs []jobsearch.Job) ([]matching.Score, error)
}

//POST /jobs/search
func handleSearchJobs(searcher jobsearch.Searcher) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var q *jobsearch.Query
		d := json.NewDecoder(r.Body)

		err := d.Decode(&q)
		if err != nil || q == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		resp, err := searcher.Search(r.Context(), *q)
		if hr := checkAPIError(err); hr != nil {
			return hr
		}

		return &handlerResponse{Code: http.StatusOK, Body: resp}
	}
}

//readResumeText reads the User's resume text in its own read-only transaction
func readResumeText(ctx context.Context, db *sql.DB, dialect api.Dialect, userID string) (string, error) {
	sqlTx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return "", &api.Error{Description: "Could not begin transaction", Type: api.ErrorTypeServer, Err: err}
	}
	tx := &api.Tx{Tx: sqlTx, Dialect: dialect}
	defer tx.Rollback()

	return api.ResumeText(context.WithValue(ctx, api.TransactionKey, tx), userID)
}

//POST /jobs/match
func handleMatchJobs(scorer Scorer, db *sql.DB, dialect api.Dialect) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *MatchRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		if len(req.Jobs) == 0 {
			return &handlerResponse{Code: http.StatusOK, Body: &MatchResponse{Scores: make([]matching.Score, 0)}}
		}

		var text string
		if req.ResumeText != nil {
			text = *req.ResumeText
		} else {
			user := r.Context().Value(api.UserKey).(*api.User)
			text, err = readResumeText(r.Context(), db, dialect, user.ID)
			if resp := checkAPIError(err); resp != nil {
				return resp
			}
		}

		scores, err := scorer.Score(r.Context(), text, req.Jobs)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: &MatchResponse{Scores: scores}}
	}
}
