package database

import (
	"path/filepath"
	"testing"
)

// OpenTest opens a migrated SQLite store in t.TempDir() and closes it on cleanup.
func OpenTest(t *testing.T) *DB {
	t.Helper()

	db, err := Connect("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
