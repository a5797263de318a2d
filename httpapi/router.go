package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/chatbot"
	"github.com/korylprince/jobmatch-server/events"
	"github.com/korylprince/jobmatch-server/jobsearch"
	"github.com/korylprince/jobmatch-server/storage"
	"go.uber.org/zap"
)

//Prefix is the path prefix the router is served under
const Prefix = "/api/1.0"

//Services are the backends used by the HTTP API
type Services struct {
	AI        chatbot.Streamer
	Jobs      jobsearch.Searcher
	Scorer    Scorer
	Football  Predictor
	Archive   storage.Archive
	Publisher events.Publisher
}

//NewRouter returns an HTTP router for the HTTP API. A nil logger discards logs.
func NewRouter(logger *zap.Logger, s SessionStore, db *sql.DB, dialect api.Dialect, svc *Services) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if svc.Archive == nil {
		svc.Archive = storage.NopArchive{}
	}
	if svc.Publisher == nil {
		svc.Publisher = events.NopPublisher{}
	}

	//construct middleware

	//database backed, authenticated
	var m = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(txMiddleware(authMiddleware(h, s), db, dialect), "application/json"), logger)
	}

	//database backed, unauthenticated
	var open = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(txMiddleware(h, db, dialect), "application/json"), logger)
	}

	//authenticated without a transaction, for provider calls
	var sess = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(sessionMiddleware(h, s), "application/json"), logger)
	}

	r := mux.NewRouter()

	r.Path("/auth").Methods("POST").Handler(open(handleAuthenticate(s)))

	r.Path("/users/").Methods("POST").Handler(open(handleCreateUserWithCredentials(s)))
	r.Path("/users/me").Methods("GET").Handler(m(handleReadCurrentUser))

	r.Path("/statuses/").Methods("GET").Handler(sess(handleReadStatuses))

	r.Path("/resume").Methods("GET").Handler(m(handleReadResume))
	r.Path("/resume").Methods("PUT").Handler(m(handleUpdateResume))
	r.Path("/resume/upload").Methods("POST").Handler(logMiddleware(jsonMiddleware(txMiddleware(
		authMiddleware(handleUploadResume(svc.Archive, logger), s), db, dialect), "multipart/form-data"), logger))

	r.Path("/jobs/search").Methods("POST").Handler(sess(handleSearchJobs(svc.Jobs)))
	r.Path("/jobs/match").Methods("POST").Handler(sess(handleMatchJobs(svc.Scorer, db, dialect)))

	r.Path("/applications/").Methods("GET").Handler(m(handleQueryApplications))
	r.Path("/applications/stats").Methods("GET").Handler(m(handleReadApplicationStats))
	r.Path("/applications/").Methods("POST").Handler(m(handleCreateApplication(svc.Publisher, logger)))
	r.Path("/applications/{id}/status").Methods("POST").Handler(m(handleUpdateApplicationStatus(svc.Publisher, logger)))

	r.Path("/chat").Methods("POST").Handler(sess(handleChat(svc.AI)))
	r.Path("/chat/ws").Methods("GET").Handler(wsAuthMiddleware(chatbot.NewHandler(svc.AI, logger.Named("chat")), s, logger))

	r.Path("/football/teams").Methods("POST").Handler(sess(handleSearchTeams(svc.Football)))
	r.Path("/football/predict").Methods("POST").Handler(sess(handlePredictMatch(svc.Football)))

	r.NotFoundHandler = logMiddleware(jsonMiddleware(notFoundHandler, ""), logger)

	return http.StripPrefix(Prefix, r)
}
