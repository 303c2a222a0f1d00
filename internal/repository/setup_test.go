package repository

import (
	"testing"

	"github.com/recon2root/eventsite/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	return database.OpenTest(t)
}
