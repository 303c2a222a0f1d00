package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recon2root/eventsite/internal/model"
)

func TestWinnerRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWinnerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, model.UpsertWinnerParams{Rank: 2, TeamName: "Beta"}))
	require.NoError(t, repo.Upsert(ctx, model.UpsertWinnerParams{Rank: 1, TeamName: "Alpha", Score: "900"}))
	require.NoError(t, repo.Upsert(ctx, model.UpsertWinnerParams{Rank: 1, TeamName: "Alpha Prime", Score: "950"}))

	winners, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, winners, 2)
	assert.Equal(t, 1, winners[0].Rank)
	assert.Equal(t, "Alpha Prime", winners[0].TeamName)
	assert.Equal(t, "950", winners[0].Score)
	assert.Equal(t, "Beta", winners[1].TeamName)

	assert.Error(t, repo.Upsert(ctx, model.UpsertWinnerParams{Rank: 4, TeamName: "Nope"}))
}

func TestContentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	entries, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, repo.Upsert(ctx, "hero_title", "Recon2Root"))
	require.NoError(t, repo.Upsert(ctx, "hero_title", "Recon2Root 2026"))
	require.NoError(t, repo.Upsert(ctx, "about", "CTF"))

	entries, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "about", entries[0].Key)
	assert.Equal(t, "Recon2Root 2026", entries[1].Value)
}
