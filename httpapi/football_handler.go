package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/korylprince/jobmatch-server/football"
)

//Predictor searches football teams and predicts matches
type Predictor interface {
	SearchTeams(ctx context.Context, name string) ([]football.Team, error)
	Predict(ctx context.Context, team1, team2 football.TeamRef) (*football.Prediction, error)
}

//POST /football/teams
func handleSearchTeams(p Predictor) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *TeamSearchRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		teams, err := p.SearchTeams(r.Context(), req.Name)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: &TeamSearchResponse{Teams: teams}}
	}
}

//POST /football/predict
func handlePredictMatch(p Predictor) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *PredictRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		prediction, err := p.Predict(r.Context(), req.Team1, req.Team2)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: prediction}
	}
}
