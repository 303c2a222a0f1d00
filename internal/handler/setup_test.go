package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/middleware"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/service"
	"github.com/recon2root/eventsite/internal/storage"
)

const (
	testUsername = "admin"
	testPassword = "correct horse"
)

type testServer struct {
	router  chi.Router
	db      *database.DB
	store   *storage.LocalStore
	photos  *storage.LocalStore
	videos  *storage.LocalStore
	auth    *service.AuthService
	certs   *service.CertificateService
	session string
}

// newTestServer wires the API the way cmd/server does, over a temp SQLite
// database and upload directory, and logs in once.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := database.OpenTest(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	photoStore, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	videoStore, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	adminRepo := repository.NewAdminRepository(db.DB)
	_, err = service.NewCredentialService(adminRepo, bcrypt.MinCost).Set(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	auth := service.NewAuthService(adminRepo, "handler-test-secret-0123456789abcdef", time.Hour, bcrypt.MinCost)

	certs := service.NewCertificateService(db, repository.NewCertificateRepository(db.DB), store)
	winners := service.NewWinnerService(db, repository.NewWinnerRepository(db.DB))
	content := service.NewContentService(db, repository.NewContentRepository(db.DB))
	photos := service.NewPhotoService(db, repository.NewPhotoRepository(db.DB), photoStore)
	videos := service.NewVideoService(repository.NewVideoRepository(db.DB), videoStore)
	organizers := service.NewOrganizerService(db, repository.NewOrganizerRepository(db.DB), photoStore)

	session := middleware.NewAdminSessionMiddleware(auth).Handler
	loginLimiter := middleware.NewLoginRateLimiter(middleware.NewMemoryFailureStore(), 3, time.Minute)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", NewAuthHandler(auth, loginLimiter.Handler, false).Routes())
		r.Mount("/certificates", NewCertificateHandler(certs, store, session, 3, 1024, 8*1024).Routes())
		r.Mount("/winners", NewWinnerHandler(winners, session).Routes())
		r.Mount("/content", NewContentHandler(content, session).Routes())
		r.Mount("/photos", NewPhotoHandler(photos, photoStore, session, 3, 1024, 8*1024).Routes())
		r.Mount("/videos", NewVideoHandler(videos, videoStore, session, 2048, 8*1024).Routes())
		r.Mount("/organizers", NewOrganizerHandler(organizers, photoStore, session, 1024, 8*1024).Routes())
		r.NotFound(APINotFound)
	})

	token, _, err := auth.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	return &testServer{
		router:  r,
		db:      db,
		store:   store,
		photos:  photoStore,
		videos:  videoStore,
		auth:    auth,
		certs:   certs,
		session: token,
	}
}

func (s *testServer) do(req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	if authenticated {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: s.session})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type multipartFile struct {
	field    string
	filename string
	content  []byte
}

func multipartRequest(t *testing.T, url string, fields map[string]string, files []multipartFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pdf(field, filename string) multipartFile {
	return multipartFile{field: field, filename: filename, content: []byte("%PDF-1.4 " + filename)}
}
