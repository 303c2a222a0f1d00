package handler

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/httputil"
	"github.com/recon2root/eventsite/internal/middleware"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// writeError logs failures the client will only see as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !apperrors.IsAppError(err) || apperrors.IsInternal(err) {
		log.Error().
			Err(err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	httputil.WriteError(w, err)
}

// decodeJSON reads a JSON body into dst. Oversized bodies are reported as
// PayloadTooLarge, anything else unreadable as a validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if isBodyTooLarge(err) {
			return apperrors.PayloadTooLarge("Request body too large")
		}
		return apperrors.ValidationError("Invalid request body")
	}
	return nil
}

// logAdminEvent audits an action taken by the signed-in admin.
func logAdminEvent(r *http.Request, event audit.Event) {
	if identity := middleware.GetAdminIdentity(r.Context()); identity != nil {
		event.Username = identity.Username
	}
	audit.LogFromRequest(r, event)
}
