package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAPIError(t *testing.T) {
	assert.Nil(t, checkAPIError(nil))

	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
		{"server", &api.Error{Description: "Could not query", Type: api.ErrorTypeServer, Err: errors.New("dsn leaked")}, http.StatusInternalServerError, "Internal Server Error"},
		{"user", &api.Error{Description: "File must be under 5MB", Type: api.ErrorTypeUser}, http.StatusBadRequest, "File must be under 5MB"},
		{"not found", &api.Error{Description: "Could not find Application(1)", Type: api.ErrorTypeNotFound}, http.StatusNotFound, "Could not find Application(1)"},
		{"rate limited", &api.Error{Description: "Rate limited", Type: api.ErrorTypeRateLimited}, http.StatusTooManyRequests, "Rate limited"},
		{"quota", &api.Error{Description: "Credits exhausted", Type: api.ErrorTypeQuotaExhausted}, http.StatusPaymentRequired, "Credits exhausted"},
		{"provider", &api.Error{Description: "AI gateway error", Type: api.ErrorTypeProvider}, http.StatusBadGateway, "AI gateway error"},
		{"configuration", &api.Error{Description: "Job search is not configured", Type: api.ErrorTypeConfiguration}, http.StatusInternalServerError, "Job search is not configured"},
		{"wrapped", fmt.Errorf("scoring: %w", &api.Error{Description: "AI gateway error", Type: api.ErrorTypeProvider}), http.StatusBadGateway, "AI gateway error"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := checkAPIError(test.err)
			require.NotNil(t, resp)
			assert.Equal(t, test.code, resp.Code)
			body := resp.Body.(*ErrorResponse)
			assert.Equal(t, test.code, body.Code)
			assert.Equal(t, test.msg, body.Error)
			assert.Equal(t, test.err, resp.Err)
		})
	}
}

func TestCheckAPIErrorDuplicate(t *testing.T) {
	resp := checkAPIError(&api.Error{Description: "Could not insert Application", Type: api.ErrorTypeDuplicate, Err: errors.New("already tracked"), DuplicateID: "app-1"})
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, &ErrorResponse{Code: http.StatusConflict, Error: "already tracked", DuplicateID: "app-1"}, resp.Body)
}
