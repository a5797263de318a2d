package httpapi

import (
	"errors"
	"net/http"

	"github.com/korylprince/jobmatch-server/api"
)

//ErrorResponse represents an HTTP error. If the error is 409 Conflict, the DuplicateID field will be populated when known.
type ErrorResponse struct {
	Code        int    `json:"code"`
	Error       string `json:"error"`
	DuplicateID string `json:"duplicate_id,omitempty"`
}

//handleError returns a handlerResponse response for the given code
func handleError(code int, err error) *handlerResponse {
	return handleErrorMessage(code, http.StatusText(code), err)
}

//handleErrorMessage returns a handlerResponse response for the given code with a user-facing message
func handleErrorMessage(code int, msg string, err error) *handlerResponse {
	return &handlerResponse{Code: code, Body: &ErrorResponse{Code: code, Error: msg}, Err: err}
}

//notFoundHandler returns a 404 handlerResponse
func notFoundHandler(w http.ResponseWriter, r *http.Request) *handlerResponse {
	return handleError(http.StatusNotFound, errors.New("Could not find handler"))
}

//errorCodes maps api.ErrorTypes to HTTP status codes
var errorCodes = map[api.ErrorType]int{
	api.ErrorTypeUser:           http.StatusBadRequest,
	api.ErrorTypeServer:         http.StatusInternalServerError,
	api.ErrorTypeDuplicate:      http.StatusConflict,
	api.ErrorTypeNotFound:       http.StatusNotFound,
	api.ErrorTypeRateLimited:    http.StatusTooManyRequests,
	api.ErrorTypeQuotaExhausted: http.StatusPaymentRequired,
	api.ErrorTypeProvider:       http.StatusBadGateway,
	api.ErrorTypeConfiguration:  http.StatusInternalServerError,
}

//checkAPIError checks an api.Error and returns a handlerResponse for it, or nil if there was no error.
//Server errors are reported with their status text only.
func checkAPIError(err error) *handlerResponse {
	if err == nil {
		return nil
	}

	var e *api.Error
	if !errors.As(err, &e) {
		return handleError(http.StatusInternalServerError, err)
	}

	code, ok := errorCodes[e.Type]
	if !ok {
		code = http.StatusInternalServerError
	}

	switch e.Type {
	case api.ErrorTypeServer:
		return handleError(code, err)
	case api.ErrorTypeDuplicate:
		msg := http.StatusText(code)
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return &handlerResponse{Code: code, Body: &ErrorResponse{
			Code:        code,
			Error:       msg,
			DuplicateID: e.DuplicateID,
		}, Err: err}
	}

	return handleErrorMessage(code, e.Description, err)
}
