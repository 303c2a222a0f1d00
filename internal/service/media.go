package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/util"
)

// allPhotoCategories is the category filter that matches every photo.
const allPhotoCategories = "all"

// FileRemover deletes stored files. Missing files are ignored.
type FileRemover interface {
	Remove(names ...string)
}

type PhotoService struct {
	db        TxRunner
	photoRepo repository.PhotoRepository
	files     FileRemover
}

func NewPhotoService(db TxRunner, photoRepo repository.PhotoRepository, files FileRemover) *PhotoService {
	return &PhotoService{db: db, photoRepo: photoRepo, files: files}
}

// List returns gallery photos, newest first. An empty category or "all"
// returns every photo.
func (s *PhotoService) List(ctx context.Context, category string) ([]model.Photo, error) {
	category = strings.TrimSpace(category)
	if category == allPhotoCategories {
		category = ""
	}
	photos, err := s.photoRepo.List(ctx, category)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return photos, nil
}

// Upload records every stored file under category in one transaction. If
// any insert fails, nothing is recorded and every file is removed.
func (s *PhotoService) Upload(ctx context.Context, category string, files []UploadedFile) (int, error) {
	if len(files) == 0 {
		return 0, apperrors.ValidationError("No files uploaded")
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = model.DefaultPhotoCategory
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.photoRepo.WithTx(tx)
		for _, f := range files {
			err := repo.Create(ctx, model.CreatePhotoParams{
				ID:           model.NewID(),
				Filename:     f.StoredName,
				OriginalName: f.OriginalName,
				Category:     category,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.files.Remove(storedNames(files)...)
		return 0, apperrors.Database(err)
	}
	return len(files), nil
}

// Delete removes the photo row and then its file.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	if !util.IsValidUUID(id) {
		return apperrors.NotFound("Photo")
	}

	photo, err := s.photoRepo.FindByID(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if photo == nil {
		return apperrors.NotFound("Photo")
	}

	deleted, err := s.photoRepo.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if !deleted {
		return apperrors.NotFound("Photo")
	}
	s.files.Remove(photo.Filename)
	return nil
}

type VideoService struct {
	videoRepo repository.VideoRepository
	files     FileRemover
}

func NewVideoService(videoRepo repository.VideoRepository, files FileRemover) *VideoService {
	return &VideoService{videoRepo: videoRepo, files: files}
}

func (s *VideoService) List(ctx context.Context) ([]model.Video, error) {
	videos, err := s.videoRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return videos, nil
}

// AddYouTube records a link to an externally hosted video. The link must be
// an absolute http or https URL.
func (s *VideoService) AddYouTube(ctx context.Context, title, link string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.MissingRequired("Video title")
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return "", apperrors.MissingRequired("YouTube URL")
	}
	if !isWebURL(link) {
		return "", apperrors.ValidationError("YouTube URL must be an http or https link")
	}

	return s.create(ctx, model.CreateVideoParams{
		ID:     model.NewID(),
		Title:  title,
		Type:   model.VideoTypeYouTube,
		Source: link,
	})
}

// AddUpload records an uploaded video file. storedName is removed if the
// video cannot be recorded; an empty storedName means no file was sent.
func (s *VideoService) AddUpload(ctx context.Context, title, storedName string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		s.files.Remove(storedName)
		return "", apperrors.MissingRequired("Video title")
	}
	if storedName == "" {
		return "", apperrors.MissingRequired("Video file")
	}

	id, err := s.create(ctx, model.CreateVideoParams{
		ID:     model.NewID(),
		Title:  title,
		Type:   model.VideoTypeUpload,
		Source: storedName,
	})
	if err != nil {
		s.files.Remove(storedName)
		return "", err
	}
	return id, nil
}

func (s *VideoService) create(ctx context.Context, params model.CreateVideoParams) (string, error) {
	if err := s.videoRepo.Create(ctx, params); err != nil {
		return "", apperrors.Database(err)
	}
	return params.ID, nil
}

// Delete removes the video row. Uploaded videos also lose their file.
func (s *VideoService) Delete(ctx context.Context, id string) error {
	if !util.IsValidUUID(id) {
		return apperrors.NotFound("Video")
	}

	video, err := s.videoRepo.FindByID(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if video == nil {
		return apperrors.NotFound("Video")
	}

	deleted, err := s.videoRepo.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if !deleted {
		return apperrors.NotFound("Video")
	}
	if video.Type == model.VideoTypeUpload {
		s.files.Remove(video.Source)
	}
	return nil
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// OrganizerInput carries organizer fields from a form or JSON body. A nil
// field was not sent. Photo is the stored name of a newly uploaded photo.
type OrganizerInput struct {
	Name        *string
	Title       *string
	Description *string
	IsFaculty   *bool
	LinkedIn    *string
	GitHub      *string
	Twitter     *string
	Instagram   *string
	Facebook    *string
	Photo       string
}

type OrganizerService struct {
	db            TxRunner
	organizerRepo repository.OrganizerRepository
	files         FileRemover
}

func NewOrganizerService(db TxRunner, organizerRepo repository.OrganizerRepository, files FileRemover) *OrganizerService {
	return &OrganizerService{db: db, organizerRepo: organizerRepo, files: files}
}

func (s *OrganizerService) List(ctx context.Context) ([]model.Organizer, error) {
	organizers, err := s.organizerRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return organizers, nil
}

// Create appends a new organizer after every existing one.
func (s *OrganizerService) Create(ctx context.Context, in OrganizerInput) (*model.Organizer, error) {
	name, title := trimmed(in.Name), trimmed(in.Title)
	if name == "" || title == "" {
		s.files.Remove(in.Photo)
		return nil, apperrors.ValidationError("Name and title are required")
	}

	o := &model.Organizer{
		ID:          model.NewID(),
		Name:        name,
		Title:       title,
		Description: trimmed(in.Description),
		IsFaculty:   in.IsFaculty != nil && *in.IsFaculty,
		LinkedIn:    optionalLink(in.LinkedIn),
		GitHub:      optionalLink(in.GitHub),
		Twitter:     optionalLink(in.Twitter),
		Instagram:   optionalLink(in.Instagram),
		Facebook:    optionalLink(in.Facebook),
	}
	if in.Photo != "" {
		o.Photo = &in.Photo
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.organizerRepo.WithTx(tx)
		next, err := repo.NextSortOrder(ctx)
		if err != nil {
			return err
		}
		o.SortOrder = next
		if err := repo.Create(ctx, o); err != nil {
			return err
		}
		created, err := repo.FindByID(ctx, o.ID)
		if err != nil {
			return err
		}
		*o = *created
		return nil
	})
	if err != nil {
		s.files.Remove(in.Photo)
		return nil, apperrors.Database(err)
	}
	return o, nil
}

// Update replaces the fields present in in. A present but empty social link
// clears it. A new photo replaces the old one, whose file is then removed.
func (s *OrganizerService) Update(ctx context.Context, id string, in OrganizerInput) (*model.Organizer, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		s.files.Remove(in.Photo)
		return nil, err
	}

	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.Title != nil {
		o.Title = strings.TrimSpace(*in.Title)
	}
	if o.Name == "" || o.Title == "" {
		s.files.Remove(in.Photo)
		return nil, apperrors.ValidationError("Name and title are required")
	}
	if in.Description != nil {
		o.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsFaculty != nil {
		o.IsFaculty = *in.IsFaculty
	}
	for _, f := range []struct {
		in  *string
		dst **string
	}{
		{in.LinkedIn, &o.LinkedIn},
		{in.GitHub, &o.GitHub},
		{in.Twitter, &o.Twitter},
		{in.Instagram, &o.Instagram},
		{in.Facebook, &o.Facebook},
	} {
		if f.in != nil {
			*f.dst = optionalLink(f.in)
		}
	}

	var oldPhoto string
	if in.Photo != "" {
		if o.Photo != nil {
			oldPhoto = *o.Photo
		}
		o.Photo = &in.Photo
	}

	if err := s.organizerRepo.Update(ctx, o); err != nil {
		s.files.Remove(in.Photo)
		return nil, apperrors.Database(err)
	}
	s.files.Remove(oldPhoto)
	return o, nil
}

// Reorder applies every position change in one transaction. Unknown ids are
// skipped; the result counts the organizers that moved.
func (s *OrganizerService) Reorder(ctx context.Context, mapping []model.OrganizerOrder) (int, error) {
	updated := 0
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.organizerRepo.WithTx(tx)
		for _, m := range mapping {
			ok, err := repo.SetSortOrder(ctx, m.ID, m.SortOrder)
			if err != nil {
				return err
			}
			if ok {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Database(err)
	}
	return updated, nil
}

// Delete removes the organizer and its photo file.
func (s *OrganizerService) Delete(ctx context.Context, id string) error {
	o, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.organizerRepo.Delete(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if !deleted {
		return apperrors.NotFound("Organizer")
	}
	if o.Photo != nil {
		s.files.Remove(*o.Photo)
	}
	return nil
}

func (s *OrganizerService) find(ctx context.Context, id string) (*model.Organizer, error) {
	if !util.IsValidUUID(id) {
		return nil, apperrors.NotFound("Organizer")
	}
	o, err := s.organizerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if o == nil {
		return nil, apperrors.NotFound("Organizer")
	}
	return o, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// optionalLink maps a missing or blank link to nil.
func optionalLink(s *string) *string {
	v := trimmed(s)
	if v == "" {
		return nil
	}
	return &v
}

func storedNames(files []UploadedFile) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.StoredName)
	}
	return names
}
