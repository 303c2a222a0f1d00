package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/middleware"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/service"
)

const (
	photoFileField     = "photos"
	videoFileField     = "video"
	organizerFileField = "photo"
)

type PhotoHandler struct {
	photoService      *service.PhotoService
	files             FileSaver
	sessionMiddleware func(http.Handler) http.Handler
	uploadBodyLimit   *middleware.BodyLimitMiddleware
	maxFiles          int
	maxFileSize       int64
}

func NewPhotoHandler(
	photoService *service.PhotoService,
	files FileSaver,
	sessionMiddleware func(http.Handler) http.Handler,
	maxFiles int,
	maxFileSize int64,
	maxBodySize int64,
) *PhotoHandler {
	return &PhotoHandler{
		photoService:      photoService,
		files:             files,
		sessionMiddleware: sessionMiddleware,
		uploadBodyLimit:   middleware.NewBodyLimitMiddleware(maxBodySize),
		maxFiles:          maxFiles,
		maxFileSize:       maxFileSize,
	}
}

func (h *PhotoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.With(h.uploadBodyLimit.Handler).Post("/upload", h.Upload)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photoService.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	form, err := parseUpload(r, h.files, uploadLimits{
		fileField:     photoFileField,
		maxFiles:      h.maxFiles,
		maxFileSize:   h.maxFileSize,
		allowedExts:   imageExts,
		rejectMessage: "Only image files are allowed",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := h.photoService.Upload(r.Context(), form.fields["category"], form.files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventPhotoUpload,
		Details: map[string]interface{}{"count": count},
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.photoService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventPhotoDelete,
		Details: map[string]interface{}{"photo_id": id},
	})
	writeSuccess(w)
}

type VideoHandler struct {
	videoService      *service.VideoService
	files             FileSaver
	sessionMiddleware func(http.Handler) http.Handler
	uploadBodyLimit   *middleware.BodyLimitMiddleware
	maxFileSize       int64
}

func NewVideoHandler(
	videoService *service.VideoService,
	files FileSaver,
	sessionMiddleware func(http.Handler) http.Handler,
	maxFileSize int64,
	maxBodySize int64,
) *VideoHandler {
	return &VideoHandler{
		videoService:      videoService,
		files:             files,
		sessionMiddleware: sessionMiddleware,
		uploadBodyLimit:   middleware.NewBodyLimitMiddleware(maxBodySize),
		maxFileSize:       maxFileSize,
	}
}

func (h *VideoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.With(h.uploadBodyLimit.Handler).Post("/upload", h.Upload)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videoService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// Upload adds a YouTube link when type is "youtube" and an uploaded file
// otherwise.
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	form, err := parseUpload(r, h.files, uploadLimits{
		fileField:     videoFileField,
		maxFiles:      1,
		maxFileSize:   h.maxFileSize,
		allowedExts:   videoExts,
		rejectMessage: "Only video files are allowed",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var stored string
	if len(form.files) > 0 {
		stored = form.files[0].StoredName
	}

	var id string
	videoType := model.VideoTypeUpload
	if form.fields["type"] == string(model.VideoTypeYouTube) {
		videoType = model.VideoTypeYouTube
		h.files.Remove(stored)
		id, err = h.videoService.AddYouTube(r.Context(), form.fields["title"], form.fields["youtube_url"])
	} else {
		id, err = h.videoService.AddUpload(r.Context(), form.fields["title"], stored)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventVideoAdd,
		Details: map[string]interface{}{"video_id": id, "type": string(videoType)},
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.videoService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventVideoDelete,
		Details: map[string]interface{}{"video_id": id},
	})
	writeSuccess(w)
}

type OrganizerHandler struct {
	organizerService  *service.OrganizerService
	files             FileSaver
	sessionMiddleware func(http.Handler) http.Handler
	bodyLimit         *middleware.BodyLimitMiddleware
	maxFileSize       int64
}

func NewOrganizerHandler(
	organizerService *service.OrganizerService,
	files FileSaver,
	sessionMiddleware func(http.Handler) http.Handler,
	maxFileSize int64,
	maxBodySize int64,
) *OrganizerHandler {
	return &OrganizerHandler{
		organizerService:  organizerService,
		files:             files,
		sessionMiddleware: sessionMiddleware,
		bodyLimit:         middleware.NewBodyLimitMiddleware(maxBodySize),
		maxFileSize:       maxFileSize,
	}
}

func (h *OrganizerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Use(h.bodyLimit.Handler)
		r.Post("/", h.Create)
		r.Post("/reorder", h.Reorder)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// List returns a bare array; the public site renders it directly.
func (h *OrganizerHandler) List(w http.ResponseWriter, r *http.Request) {
	organizers, err := h.organizerService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, organizers)
}

func (h *OrganizerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.readOrganizer(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.organizerService.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logOrganizerChange(r, "create", o.ID)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrganizerHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := h.readOrganizer(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.organizerService.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logOrganizerChange(r, "update", o.ID)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrganizerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.organizerService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	logOrganizerChange(r, "delete", id)
	writeSuccess(w)
}

func (h *OrganizerHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mapping json.RawMessage `json:"mapping"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var mapping []model.OrganizerOrder
	if !bytes.HasPrefix(bytes.TrimSpace(req.Mapping), []byte("[")) || json.Unmarshal(req.Mapping, &mapping) != nil {
		writeError(w, r, apperrors.ValidationError("Invalid mapping"))
		return
	}

	moved, err := h.organizerService.Reorder(r.Context(), mapping)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventOrganizerChange,
		Details: map[string]interface{}{"action": "reorder", "moved": moved},
	})
	writeSuccess(w)
}

// readOrganizer accepts a multipart form with an optional "photo" file or a
// JSON object. Only the fields actually sent are set on the result.
func (h *OrganizerHandler) readOrganizer(r *http.Request) (service.OrganizerInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		form, err := parseUpload(r, h.files, uploadLimits{
			fileField:     organizerFileField,
			maxFiles:      1,
			maxFileSize:   h.maxFileSize,
			allowedExts:   imageExts,
			rejectMessage: "Only image files are allowed",
		})
		if err != nil {
			return service.OrganizerInput{}, err
		}
		in := organizerInput(form.fields)
		if len(form.files) > 0 {
			in.Photo = form.files[0].StoredName
		}
		return in, nil
	}

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		return service.OrganizerInput{}, err
	}
	fields := make(map[string]string, len(body))
	for k, v := range body {
		switch v := v.(type) {
		case nil:
			fields[k] = ""
		case string:
			fields[k] = v
		default:
			fields[k] = fmt.Sprint(v)
		}
	}
	return organizerInput(fields), nil
}

func organizerInput(fields map[string]string) service.OrganizerInput {
	field := func(name string) *string {
		if v, ok := fields[name]; ok {
			return &v
		}
		return nil
	}

	in := service.OrganizerInput{
		Name:        field("name"),
		Title:       field("title"),
		Description: field("description"),
		LinkedIn:    field("linkedin"),
		GitHub:      field("github"),
		Twitter:     field("twitter"),
		Instagram:   field("instagram"),
		Facebook:    field("facebook"),
	}
	if v := field("is_faculty"); v != nil {
		faculty := strings.TrimSpace(*v) == "true"
		in.IsFaculty = &faculty
	}
	return in
}

func logOrganizerChange(r *http.Request, action, id string) {
	logAdminEvent(r, audit.Event{
		Type:    audit.EventOrganizerChange,
		Details: map[string]interface{}{"action": action, "organizer_id": id},
	})
}
