package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
)

type contextKey string

const SessionCookie = "token"

const AdminIdentityContextKey contextKey = "adminIdentity"

func GetAdminIdentity(ctx context.Context) *model.AdminIdentity {
	if identity, ok := ctx.Value(AdminIdentityContextKey).(*model.AdminIdentity); ok {
		return identity
	}
	return nil
}

// SessionAuthorizer verifies a session token.
type SessionAuthorizer interface {
	Authorize(token string) (*model.AdminIdentity, error)
}

// AdminSessionMiddleware rejects requests without a valid session cookie and
// stores the verified identity in the request context.
type AdminSessionMiddleware struct {
	auth SessionAuthorizer
}

func NewAdminSessionMiddleware(auth SessionAuthorizer) *AdminSessionMiddleware {
	return &AdminSessionMiddleware{auth: auth}
}

func (m *AdminSessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			token = cookie.Value
		}

		identity, err := m.auth.Authorize(token)
		if err != nil {
			if apperrors.GetCode(err) == apperrors.ErrCodeInvalidSession {
				audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			}
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), AdminIdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie stores token in an HttpOnly, SameSite=Strict cookie that
// expires together with the token.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
