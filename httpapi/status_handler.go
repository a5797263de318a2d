package httpapi

import (
	"net/http"

	"github.com/korylprince/jobmatch-server/api"
)

//GET /statuses/
func handleReadStatuses(w http.ResponseWriter, r *http.Request) *handlerResponse {
	return &handlerResponse{Code: http.StatusOK, Body: &ReadStatusesResponse{Statuses: api.ReadStatuses()}}
}
