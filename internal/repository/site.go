package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/model"
)

type WinnerRepository interface {
	FindAll(ctx context.Context) ([]model.Winner, error)
	Upsert(ctx context.Context, params model.UpsertWinnerParams) error
	WithTx(tx *sqlx.Tx) WinnerRepository
}

type winnerRepo struct {
	db database.DBTX
}

func NewWinnerRepository(db database.DBTX) WinnerRepository {
	return &winnerRepo{db: db}
}

func (r *winnerRepo) WithTx(tx *sqlx.Tx) WinnerRepository {
	return &winnerRepo{db: tx}
}

func (r *winnerRepo) FindAll(ctx context.Context) ([]model.Winner, error) {
	winners := []model.Winner{}
	err := r.db.SelectContext(ctx, &winners, `SELECT * FROM winners ORDER BY rank ASC`)
	if err != nil {
		return nil, err
	}
	return winners, nil
}

func (r *winnerRepo) Upsert(ctx context.Context, params model.UpsertWinnerParams) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO winners (rank, team_name, members, score, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (rank) DO UPDATE SET
			team_name = excluded.team_name,
			members = excluded.members,
			score = excluded.score,
			updated_at = CURRENT_TIMESTAMP
	`), params.Rank, params.TeamName, params.Members, params.Score)
	return err
}

type ContentRepository interface {
	FindAll(ctx context.Context) ([]model.ContentEntry, error)
	Upsert(ctx context.Context, key, value string) error
	WithTx(tx *sqlx.Tx) ContentRepository
}

type contentRepo struct {
	db database.DBTX
}

func NewContentRepository(db database.DBTX) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) WithTx(tx *sqlx.Tx) ContentRepository {
	return &contentRepo{db: tx}
}

func (r *contentRepo) FindAll(ctx context.Context) ([]model.ContentEntry, error) {
	entries := []model.ContentEntry{}
	err := r.db.SelectContext(ctx, &entries, `SELECT * FROM content ORDER BY key`)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *contentRepo) Upsert(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO content (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`), key, value)
	return err
}
