package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/middleware"
	"github.com/recon2root/eventsite/internal/service"
)

type AuthHandler struct {
	authService  *service.AuthService
	loginLimiter func(http.Handler) http.Handler
	isProduction bool
}

func NewAuthHandler(
	authService *service.AuthService,
	loginLimiter func(http.Handler) http.Handler,
	isProduction bool,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		isProduction: isProduction,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.loginLimiter).Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/check", h.Check)

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, apperrors.ValidationError("Username and password are required"))
		return
	}

	token, identity, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeInvalidCredentials {
			audit.LogFromRequest(r, audit.Event{
				Type:     audit.EventLoginFailure,
				Username: strings.TrimSpace(req.Username),
			})
		}
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, Username: identity.Username})

	middleware.SetSessionCookie(w, token, h.authService.TTL(), h.isProduction)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Logged in successfully"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if identity, err := h.authService.Authorize(cookie.Value); err == nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, Username: identity.Username})
		}
	}

	middleware.ClearSessionCookie(w, h.isProduction)
	writeSuccess(w)
}

func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		authenticated = h.authService.CheckSession(cookie.Value)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}
