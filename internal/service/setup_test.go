package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/storage"
)

type testEnv struct {
	db    *database.DB
	certs repository.CertificateRepository
	store *storage.LocalStore
	svc   *CertificateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.OpenTest(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	certs := repository.NewCertificateRepository(db.DB)
	return &testEnv{
		db:    db,
		certs: certs,
		store: store,
		svc:   NewCertificateService(db, certs, store),
	}
}

// upload stores a fake PDF the way the multipart handler would.
func (e *testEnv) upload(t *testing.T, originalName string) UploadedFile {
	t.Helper()

	stored, err := e.store.Save(bytes.NewReader([]byte("%PDF-1.4 "+originalName)), originalName, 1<<20)
	require.NoError(t, err)
	return UploadedFile{OriginalName: originalName, StoredName: stored}
}
