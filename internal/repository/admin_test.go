package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recon2root/eventsite/internal/model"
)

func TestAdminRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()

	t.Run("returns nil for unknown username", func(t *testing.T) {
		admin, err := repo.FindByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, admin)
	})

	t.Run("creates and finds admin", func(t *testing.T) {
		admin, err := repo.Create(ctx, model.UpsertAdminParams{ID: "a1", Username: "root", PasswordHash: "h1"})
		require.NoError(t, err)
		assert.Equal(t, "a1", admin.ID)
		assert.Equal(t, "h1", admin.PasswordHash)
	})

	t.Run("username match is case-sensitive", func(t *testing.T) {
		admin, err := repo.FindByUsername(ctx, "ROOT")
		require.NoError(t, err)
		assert.Nil(t, admin)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, model.UpsertAdminParams{ID: "a2", Username: "root", PasswordHash: "h2"})
		assert.Error(t, err)
	})

	t.Run("updates password hash", func(t *testing.T) {
		require.NoError(t, repo.UpdatePasswordHash(ctx, "root", "h3"))

		admin, err := repo.FindByUsername(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, "h3", admin.PasswordHash)
	})
}
