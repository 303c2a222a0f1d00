package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
)

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(token string) (*model.AdminIdentity, error) {
	args := m.Called(token)
	identity, _ := args.Get(0).(*model.AdminIdentity)
	return identity, args.Error(1)
}

func TestAdminSessionMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetAdminIdentity(r.Context())
		if identity == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(identity.Username))
	})

	t.Run("valid session passes identity through", func(t *testing.T) {
		auth := &mockAuthorizer{}
		auth.On("Authorize", "good").Return(&model.AdminIdentity{ID: "1", Username: "admin"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/certificates/stats", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		rec := httptest.NewRecorder()

		NewAdminSessionMiddleware(auth).Handler(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", rec.Body.String())
		auth.AssertExpectations(t)
	})

	t.Run("missing cookie is unauthorized", func(t *testing.T) {
		auth := &mockAuthorizer{}
		auth.On("Authorize", "").Return(nil, apperrors.Unauthorized("Unauthorized"))

		req := httptest.NewRequest(http.MethodGet, "/api/certificates/stats", nil)
		rec := httptest.NewRecorder()

		NewAdminSessionMiddleware(auth).Handler(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)
	})

	t.Run("bad token is an invalid session", func(t *testing.T) {
		auth := &mockAuthorizer{}
		auth.On("Authorize", "expired").Return(nil, apperrors.InvalidSession())

		req := httptest.NewRequest(http.MethodGet, "/api/certificates/stats", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "expired"})
		rec := httptest.NewRecorder()

		NewAdminSessionMiddleware(auth).Handler(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired session")
	})
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc", 8*time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookie, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 8*60*60, c.MaxAge)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
