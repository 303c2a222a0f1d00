package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/model"
)

type PhotoRepository interface {
	// List returns photos newest first, limited to category unless it is empty.
	List(ctx context.Context, category string) ([]model.Photo, error)
	FindByID(ctx context.Context, id string) (*model.Photo, error)
	Create(ctx context.Context, params model.CreatePhotoParams) error
	Delete(ctx context.Context, id string) (bool, error)
	ListFilenames(ctx context.Context) ([]string, error)
	WithTx(tx *sqlx.Tx) PhotoRepository
}

type photoRepo struct {
	db database.DBTX
}

func NewPhotoRepository(db database.DBTX) PhotoRepository {
	return &photoRepo{db: db}
}

func (r *photoRepo) WithTx(tx *sqlx.Tx) PhotoRepository {
	return &photoRepo{db: tx}
}

func (r *photoRepo) List(ctx context.Context, category string) ([]model.Photo, error) {
	photos := []model.Photo{}
	var err error
	if category == "" {
		err = r.db.SelectContext(ctx, &photos, `
			SELECT * FROM photos ORDER BY uploaded_at DESC, id DESC
		`)
	} else {
		err = r.db.SelectContext(ctx, &photos, r.db.Rebind(`
			SELECT * FROM photos WHERE category = ? ORDER BY uploaded_at DESC, id DESC
		`), category)
	}
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *photoRepo) FindByID(ctx context.Context, id string) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.GetContext(ctx, &photo, r.db.Rebind(`SELECT * FROM photos WHERE id = ?`), id)
	return HandleNotFound(&photo, err)
}

func (r *photoRepo) Create(ctx context.Context, params model.CreatePhotoParams) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO photos (id, filename, original_name, category)
		VALUES (?, ?, ?, ?)
	`), params.ID, params.Filename, params.OriginalName, params.Category)
	return err
}

func (r *photoRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "photos", id)
}

func (r *photoRepo) ListFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `SELECT filename FROM photos`)
	return names, err
}

type VideoRepository interface {
	List(ctx context.Context) ([]model.Video, error)
	FindByID(ctx context.Context, id string) (*model.Video, error)
	Create(ctx context.Context, params model.CreateVideoParams) error
	Delete(ctx context.Context, id string) (bool, error)
	// ListFilenames returns the stored files of uploaded videos.
	ListFilenames(ctx context.Context) ([]string, error)
}

type videoRepo struct {
	db database.DBTX
}

func NewVideoRepository(db database.DBTX) VideoRepository {
	return &videoRepo{db: db}
}

func (r *videoRepo) List(ctx context.Context) ([]model.Video, error) {
	videos := []model.Video{}
	err := r.db.SelectContext(ctx, &videos, `
		SELECT * FROM videos ORDER BY uploaded_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) FindByID(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	err := r.db.GetContext(ctx, &video, r.db.Rebind(`SELECT * FROM videos WHERE id = ?`), id)
	return HandleNotFound(&video, err)
}

func (r *videoRepo) Create(ctx context.Context, params model.CreateVideoParams) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO videos (id, title, type, source)
		VALUES (?, ?, ?, ?)
	`), params.ID, params.Title, string(params.Type), params.Source)
	return err
}

func (r *videoRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "videos", id)
}

func (r *videoRepo) ListFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, r.db.Rebind(`
		SELECT source FROM videos WHERE type = ?
	`), string(model.VideoTypeUpload))
	return names, err
}

type OrganizerRepository interface {
	// List returns organizers in display order.
	List(ctx context.Context) ([]model.Organizer, error)
	FindByID(ctx context.Context, id string) (*model.Organizer, error)
	// NextSortOrder is one past the highest sort_order in use, or 1.
	NextSortOrder(ctx context.Context) (int, error)
	Create(ctx context.Context, o *model.Organizer) error
	Update(ctx context.Context, o *model.Organizer) error
	SetSortOrder(ctx context.Context, id string, sortOrder int) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// ListFilenames returns the stored photo of every organizer that has one.
	ListFilenames(ctx context.Context) ([]string, error)
	WithTx(tx *sqlx.Tx) OrganizerRepository
}

type organizerRepo struct {
	db database.DBTX
}

func NewOrganizerRepository(db database.DBTX) OrganizerRepository {
	return &organizerRepo{db: db}
}

func (r *organizerRepo) WithTx(tx *sqlx.Tx) OrganizerRepository {
	return &organizerRepo{db: tx}
}

func (r *organizerRepo) List(ctx context.Context) ([]model.Organizer, error) {
	organizers := []model.Organizer{}
	err := r.db.SelectContext(ctx, &organizers, `
		SELECT * FROM organizers ORDER BY sort_order ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	return organizers, nil
}

func (r *organizerRepo) FindByID(ctx context.Context, id string) (*model.Organizer, error) {
	var o model.Organizer
	err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT * FROM organizers WHERE id = ?`), id)
	return HandleNotFound(&o, err)
}

func (r *organizerRepo) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM organizers`)
	return next, err
}

func (r *organizerRepo) Create(ctx context.Context, o *model.Organizer) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO organizers (
			id, name, title, description, photo, is_faculty, sort_order,
			linkedin, github, twitter, instagram, facebook
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), o.ID, o.Name, o.Title, o.Description, o.Photo, o.IsFaculty, o.SortOrder,
		o.LinkedIn, o.GitHub, o.Twitter, o.Instagram, o.Facebook)
	return err
}

func (r *organizerRepo) Update(ctx context.Context, o *model.Organizer) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE organizers SET
			name = ?, title = ?, description = ?, photo = ?, is_faculty = ?, sort_order = ?,
			linkedin = ?, github = ?, twitter = ?, instagram = ?, facebook = ?
		WHERE id = ?
	`), o.Name, o.Title, o.Description, o.Photo, o.IsFaculty, o.SortOrder,
		o.LinkedIn, o.GitHub, o.Twitter, o.Instagram, o.Facebook, o.ID)
	return err
}

func (r *organizerRepo) SetSortOrder(ctx context.Context, id string, sortOrder int) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE organizers SET sort_order = ? WHERE id = ?
	`), sortOrder, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *organizerRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.db, "organizers", id)
}

func (r *organizerRepo) ListFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `SELECT photo FROM organizers WHERE photo IS NOT NULL`)
	return names, err
}

// deleteByID removes one row from table and reports whether it existed.
// table is always a constant chosen by the caller.
func deleteByID(ctx context.Context, db database.DBTX, table, id string) (bool, error) {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}
