package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/korylprince/jobmatch-server/api"
	"go.uber.org/zap"
)

type handlerResponse struct {
	Code int
	Body interface{}
	User *api.User
	Err  error

	//Written is set when the handler wrote the response itself, e.g. a stream
	Written bool
}

type returnHandler func(http.ResponseWriter, *http.Request) *handlerResponse

func logMiddleware(next returnHandler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := next(w, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("code", resp.Code),
			zap.String("status", http.StatusText(resp.Code)),
		}
		if r.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", r.URL.RawQuery))
		}
		if resp.User != nil {
			fields = append(fields, zap.String("user", resp.User.ID))
		}
		if resp.Err != nil {
			fields = append(fields, zap.Error(resp.Err))
		}

		if resp.Code >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	})
}

//jsonMiddleware checks non-GET requests have the given media type, if not empty, and writes the handler's response as JSON
func jsonMiddleware(next returnHandler, mediaType string) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var resp *handlerResponse

		if mediaType != "" && r.Method != http.MethodGet {
			reqType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				resp = handleError(http.StatusBadRequest, errors.New("Could not parse Content-Type"))
				goto serve
			}
			if reqType != mediaType {
				resp = handleError(http.StatusBadRequest, fmt.Errorf("Content-Type not %s", mediaType))
				goto serve
			}
		}

		w.Header().Set("Content-Type", "application/json")
		resp = next(w, r)
		if resp.Written {
			return resp
		}

	serve:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Code)
		e := json.NewEncoder(w)
		err := e.Encode(resp.Body)
		if err != nil {
			resp.Err = fmt.Errorf("Could not encode json: %v", err)
		}
		return resp
	}
}

//sessionKey returns the session key from the X-Session-Key header or a Bearer Authorization header
func sessionKey(r *http.Request) string {
	if key := r.Header.Get("X-Session-Key"); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func checkSession(r *http.Request, s SessionStore) (*Session, *handlerResponse) {
	key := sessionKey(r)
	if key == "" {
		return nil, handleError(http.StatusUnauthorized, errors.New("session key empty"))
	}

	sess, err := s.Check(key)
	if err != nil {
		return nil, handleError(http.StatusInternalServerError, fmt.Errorf("Could not check session key: %v", err))
	}
	if sess == nil {
		return nil, handleError(http.StatusUnauthorized, errors.New("Could not find session"))
	}

	return sess, nil
}

//authMiddleware authenticates the request and loads its User. It must run inside txMiddleware.
func authMiddleware(next returnHandler, s SessionStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		sess, resp := checkSession(r, s)
		if resp != nil {
			return resp
		}

		user, err := api.ReadUser(r.Context(), sess.UserID)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}
		if user == nil {
			return handleError(http.StatusUnauthorized, fmt.Errorf("Could not find User(%s) for session", sess.UserID))
		}

		ctx := context.WithValue(r.Context(), api.UserKey, user)
		resp = next(w, r.WithContext(ctx))
		resp.User = user

		return resp
	}
}

//sessionMiddleware authenticates the request without touching the database.
//The context User only has its ID and Email set.
func sessionMiddleware(next returnHandler, s SessionStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		sess, resp := checkSession(r, s)
		if resp != nil {
			return resp
		}

		user := &api.User{ID: sess.UserID, Email: sess.Email}
		ctx := context.WithValue(r.Context(), api.UserKey, user)
		resp = next(w, r.WithContext(ctx))
		resp.User = user

		return resp
	}
}

//wsAuthMiddleware authenticates a WebSocket upgrade request. Browsers can't set headers on upgrades,
//so the session key may also be given with the session_key query parameter.
func wsAuthMiddleware(next http.Handler, s SessionStore, logger *zap.Logger) http.Handler {
	return logMiddleware(func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		if key := r.URL.Query().Get("session_key"); key != "" && sessionKey(r) == "" {
			r.Header.Set("X-Session-Key", key)
		}

		sess, resp := checkSession(r, s)
		if resp != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(resp.Code)
			json.NewEncoder(w).Encode(resp.Body)
			return resp
		}

		user := &api.User{ID: sess.UserID, Email: sess.Email}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), api.UserKey, user)))

		return &handlerResponse{Code: http.StatusSwitchingProtocols, User: user, Written: true}
	}, logger)
}

func txMiddleware(next returnHandler, db *sql.DB, dialect api.Dialect) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		sqlTx, err := db.BeginTx(r.Context(), nil)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not begin transaction: %v", err))
		}
		tx := &api.Tx{Tx: sqlTx, Dialect: dialect}

		ctx := context.WithValue(r.Context(), api.TransactionKey, tx)
		resp := next(w, r.WithContext(ctx))

		if resp.Code >= http.StatusBadRequest {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				return handleError(http.StatusInternalServerError, fmt.Errorf("Could not rollback transaction: %v", rErr))
			}
			return resp
		}

		if err = tx.Commit(); err != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				return handleError(http.StatusInternalServerError, fmt.Errorf("Could not rollback transaction: %v", rErr))
			}
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not commit transaction: %v", err))
		}

		return resp
	}
}
