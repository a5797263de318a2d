package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/events"
	"github.com/korylprince/jobmatch-server/matching"
	"go.uber.org/zap"
)

//publish sends e, logging failures. Tracking succeeds even if the event is lost.
func publish(r *http.Request, pub events.Publisher, logger *zap.Logger, e events.Event) {
	e.Time = time.Now().UTC()
	if err := pub.Publish(r.Context(), e); err != nil {
		logger.Warn("could not publish event", zap.String("type", e.Type), zap.String("application", e.ApplicationID), zap.Error(err))
	}
}

//GET /applications/?status=
func handleQueryApplications(w http.ResponseWriter, r *http.Request) *handlerResponse {
	user := r.Context().Value(api.UserKey).(*api.User)

	apps, err := api.QueryApplications(r.Context(), user.ID, api.ApplicationStatus(r.URL.Query().Get("status")))
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &QueryApplicationsResponse{Applications: apps}}
}

//GET /applications/stats
func handleReadApplicationStats(w http.ResponseWriter, r *http.Request) *handlerResponse {
	user := r.Context().Value(api.UserKey).(*api.User)

	stats, err := api.ReadApplicationStats(r.Context(), user.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: stats}
}

//POST /applications/
func handleCreateApplication(pub events.Publisher, logger *zap.Logger) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *ApplicationCreateRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		user := r.Context().Value(api.UserKey).(*api.User)

		app := &api.Application{JobID: req.JobID, JobTitle: req.JobTitle, Company: req.Company, JobURL: req.JobURL, Location: req.Location}
		if req.Job != nil {
			app = matching.ApplicationFromJob(*req.Job)
		}
		app.UserID = user.ID

		id, err := api.CreateApplication(r.Context(), app)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		app, err = api.ReadApplication(r.Context(), user.ID, id)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}
		if app == nil {
			return handleError(http.StatusInternalServerError, errors.New("Could not find application, but just created"))
		}

		publish(r, pub, logger, events.Event{
			Type:          events.TypeApplicationCreated,
			UserID:        user.ID,
			ApplicationID: app.ID,
			JobID:         app.JobID,
			Status:        string(app.Status),
		})

		return &handlerResponse{Code: http.StatusOK, Body: app}
	}
}

//POST /applications/:id/status
func handleUpdateApplicationStatus(pub events.Publisher, logger *zap.Logger) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		id := mux.Vars(r)["id"]

		var req *StatusUpdateRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		user := r.Context().Value(api.UserKey).(*api.User)

		err = api.UpdateApplicationStatus(r.Context(), user.ID, id, api.ApplicationStatus(req.Status))
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		app, err := api.ReadApplication(r.Context(), user.ID, id)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}
		if app == nil {
			return handleError(http.StatusNotFound, errors.New("Could not find application, but just updated"))
		}

		publish(r, pub, logger, events.Event{
			Type:          events.TypeApplicationStatusChanged,
			UserID:        user.ID,
			ApplicationID: app.ID,
			JobID:         app.JobID,
			Status:        string(app.Status),
		})

		return &handlerResponse{Code: http.StatusOK, Body: app}
	}
}
