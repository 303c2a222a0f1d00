package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("creates sqlite file under missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "site.db")
		db, err := Connect("sqlite://" + path)
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Ping(context.Background()))
		assert.Equal(t, "sqlite3", db.DriverName())
	})

	t.Run("rejects unsupported scheme", func(t *testing.T) {
		_, err := Connect("mysql://localhost/db")
		assert.Error(t, err)
	})
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("data/site.db")
	assert.Contains(t, dsn, "data/site.db?")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_txlock=immediate")

	dsn = sqliteDSN("data/site.db?cache=shared")
	assert.Contains(t, dsn, "cache=shared&")
}

func TestMigrate(t *testing.T) {
	db := OpenTest(t)

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, db.Migrate())
	})

	t.Run("creates tables", func(t *testing.T) {
		for _, table := range []string{"admin", "certificates", "winners", "content", "photos", "videos", "organizers"} {
			var n int
			err := db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table)
			require.NoError(t, err, table)
			assert.Equal(t, 0, n)
		}
	})
}

func TestWithTx(t *testing.T) {
	db := OpenTest(t)
	ctx := context.Background()

	insert := func(tx *sqlx.Tx, key string) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO content (key, value) VALUES (?, ?)`), key, "v")
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			return insert(tx, "committed")
		})
		require.NoError(t, err)

		var n int
		require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM content WHERE key = 'committed'`))
		assert.Equal(t, 1, n)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			if err := insert(tx, "rolled-back"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var n int
		require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM content WHERE key = 'rolled-back'`))
		assert.Equal(t, 0, n)
	})

	t.Run("rolls back and repanics", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = db.WithTx(ctx, func(tx *sqlx.Tx) error {
				_ = insert(tx, "panicked")
				panic("boom")
			})
		})

		var n int
		require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM content WHERE key = 'panicked'`))
		assert.Equal(t, 0, n)
	})
}
