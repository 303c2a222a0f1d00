package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/model"
)

// CertificateRepository owns the certificates table. Every write recomputes
// participant_name_lower from participant_name.
type CertificateRepository interface {
	FindByID(ctx context.Context, id string) (*model.Certificate, error)
	Insert(ctx context.Context, params model.UpsertCertificateParams) (*model.Certificate, error)
	Upsert(ctx context.Context, params model.UpsertCertificateParams) error
	Search(ctx context.Context, normalizedQuery string, limit int) ([]model.CertificateMatch, error)
	IncrementDownload(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*model.CertificateStats, error)
	IsFilenameReferenced(ctx context.Context, filename string) (bool, error)
	ListFilenames(ctx context.Context) ([]string, error)
	WithTx(tx *sqlx.Tx) CertificateRepository
}

type certificateRepo struct {
	db database.DBTX
}

func NewCertificateRepository(db database.DBTX) CertificateRepository {
	return &certificateRepo{db: db}
}

func (r *certificateRepo) WithTx(tx *sqlx.Tx) CertificateRepository {
	return &certificateRepo{db: tx}
}

func (r *certificateRepo) FindByID(ctx context.Context, id string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.GetContext(ctx, &cert, r.db.Rebind(`
		SELECT * FROM certificates WHERE id = ?
	`), id)
	return HandleNotFound(&cert, err)
}

// Insert always creates a new row; a duplicate id is an error.
func (r *certificateRepo) Insert(ctx context.Context, params model.UpsertCertificateParams) (*model.Certificate, error) {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO certificates (id, participant_name, participant_name_lower, filename)
		VALUES (?, ?, ?, ?)
	`), params.ID, params.ParticipantName, model.NormalizeName(params.ParticipantName), params.Filename)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, params.ID)
}

// Upsert inserts or replaces the row keyed by id. The download counter of an
// existing row is kept.
func (r *certificateRepo) Upsert(ctx context.Context, params model.UpsertCertificateParams) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO certificates (id, participant_name, participant_name_lower, filename)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			participant_name = excluded.participant_name,
			participant_name_lower = excluded.participant_name_lower,
			filename = excluded.filename
	`), params.ID, params.ParticipantName, model.NormalizeName(params.ParticipantName), params.Filename)
	return err
}

func (r *certificateRepo) Search(ctx context.Context, normalizedQuery string, limit int) ([]model.CertificateMatch, error) {
	matches := []model.CertificateMatch{}
	err := r.db.SelectContext(ctx, &matches, r.db.Rebind(`
		SELECT id, participant_name FROM certificates
		WHERE participant_name_lower LIKE ? ESCAPE '\'
		ORDER BY participant_name_lower, id
		LIMIT ?
	`), containsPattern(normalizedQuery), limit)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// IncrementDownload bumps the counter in a single statement so concurrent
// downloads never lose an increment. It reports whether the row existed.
func (r *certificateRepo) IncrementDownload(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE certificates SET downloaded_count = downloaded_count + 1 WHERE id = ?
	`), id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *certificateRepo) Stats(ctx context.Context) (*model.CertificateStats, error) {
	var stats model.CertificateStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(downloaded_count), 0) AS total_downloads
		FROM certificates
	`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *certificateRepo) IsFilenameReferenced(ctx context.Context, filename string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM certificates WHERE filename = ?
	`), filename)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *certificateRepo) ListFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `SELECT DISTINCT filename FROM certificates`)
	if err != nil {
		return nil, err
	}
	return names, nil
}
