package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/service"
)

type WinnerHandler struct {
	winnerService     *service.WinnerService
	sessionMiddleware func(http.Handler) http.Handler
}

func NewWinnerHandler(winnerService *service.WinnerService, sessionMiddleware func(http.Handler) http.Handler) *WinnerHandler {
	return &WinnerHandler{winnerService: winnerService, sessionMiddleware: sessionMiddleware}
}

func (h *WinnerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.With(h.sessionMiddleware).Put("/", h.Update)

	return r
}

func (h *WinnerHandler) List(w http.ResponseWriter, r *http.Request) {
	winners, err := h.winnerService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"winners": winners})
}

type winnerInput struct {
	Rank     int    `json:"rank"`
	TeamName string `json:"team_name"`
	Members  string `json:"members"`
	Score    string `json:"score"`
}

func (h *WinnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Winners []winnerInput `json:"winners"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	params := make([]model.UpsertWinnerParams, 0, len(req.Winners))
	for _, in := range req.Winners {
		params = append(params, model.UpsertWinnerParams{
			Rank:     in.Rank,
			TeamName: in.TeamName,
			Members:  in.Members,
			Score:    in.Score,
		})
	}

	written, err := h.winnerService.Update(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventWinnersUpdate,
		Details: map[string]interface{}{"written": written},
	})
	writeSuccess(w)
}

type ContentHandler struct {
	contentService    *service.ContentService
	sessionMiddleware func(http.Handler) http.Handler
}

func NewContentHandler(contentService *service.ContentService, sessionMiddleware func(http.Handler) http.Handler) *ContentHandler {
	return &ContentHandler{contentService: contentService, sessionMiddleware: sessionMiddleware}
}

func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.With(h.sessionMiddleware).Put("/", h.Update)

	return r
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	content, err := h.contentService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Updates json.RawMessage `json:"updates"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var updates map[string]any
	if len(req.Updates) > 0 {
		if err := json.Unmarshal(req.Updates, &updates); err != nil {
			writeError(w, r, apperrors.ValidationError("Updates object is required"))
			return
		}
	}

	written, err := h.contentService.Update(r.Context(), updates)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventContentUpdate,
		Details: map[string]interface{}{"written": written},
	})
	writeSuccess(w)
}
