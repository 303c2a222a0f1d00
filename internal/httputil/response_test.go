package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/recon2root/eventsite/internal/errors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteError(t *testing.T) {
	t.Run("maps client errors to their status", func(t *testing.T) {
		tests := []struct {
			err    *apperrors.AppError
			status int
		}{
			{apperrors.QueryTooShort(2), http.StatusBadRequest},
			{apperrors.MissingRequired("csv"), http.StatusBadRequest},
			{apperrors.InvalidCredentials(), http.StatusUnauthorized},
			{apperrors.InvalidSession(), http.StatusUnauthorized},
			{apperrors.NotFound("Certificate"), http.StatusNotFound},
			{apperrors.PayloadTooLarge("File too large"), http.StatusRequestEntityTooLarge},
			{apperrors.RateLimitExceeded("slow down"), http.StatusTooManyRequests},
		}

		for _, tt := range tests {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code, string(tt.err.Code))
			resp := decodeError(t, rec)
			assert.Equal(t, tt.err.Message, resp.Error)
			assert.Equal(t, tt.err.Code, resp.Code)
		}
	})

	t.Run("hides database error details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.Database(errors.New("near \"SELEC\": syntax error")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "SELEC")
		resp := decodeError(t, rec)
		assert.Equal(t, "Internal server error", resp.Error)
		assert.Equal(t, apperrors.ErrCodeDatabase, resp.Code)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("secret detail"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret detail")
		assert.Equal(t, apperrors.ErrCodeInternal, decodeError(t, rec).Code)
	})
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]bool{"success": true})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
