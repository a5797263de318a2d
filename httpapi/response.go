package httpapi

import (
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/football"
	"github.com/korylprince/jobmatch-server/matching"
)

//AuthenticateResponse is a successful authentication response including the session key and User
type AuthenticateResponse struct {
	SessionKey string    `json:"session_key"`
	User       *api.User `json:"user"`
}

//MatchResponse contains relevance scores in job order
type MatchResponse struct {
	Scores []matching.Score `json:"scores"`
}

//QueryApplicationsResponse contains a list of Applications
type QueryApplicationsResponse struct {
	Applications []*api.Application `json:"applications"`
}

//ReadStatusesResponse contains a list of allowed Statuses
type ReadStatusesResponse struct {
	Statuses []api.ApplicationStatus `json:"statuses"`
}

//TeamSearchResponse contains matching teams
type TeamSearchResponse struct {
	Teams []football.Team `json:"teams"`
}
