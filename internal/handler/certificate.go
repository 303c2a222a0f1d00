package handler

import (
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/middleware"
	"github.com/recon2root/eventsite/internal/service"
)

const (
	bulkFileField   = "pdfs"
	singleFileField = "pdf"
	manifestField   = "csv"
	nameField       = "participant_name"

	pdfRejectMessage = "Only PDF files are allowed"
)

type CertificateHandler struct {
	certService       *service.CertificateService
	files             FileSaver
	sessionMiddleware func(http.Handler) http.Handler
	uploadBodyLimit   *middleware.BodyLimitMiddleware
	maxFiles          int
	maxFileSize       int64
}

func NewCertificateHandler(
	certService *service.CertificateService,
	files FileSaver,
	sessionMiddleware func(http.Handler) http.Handler,
	maxFiles int,
	maxFileSize int64,
	maxBodySize int64,
) *CertificateHandler {
	return &CertificateHandler{
		certService:       certService,
		files:             files,
		sessionMiddleware: sessionMiddleware,
		uploadBodyLimit:   middleware.NewBodyLimitMiddleware(maxBodySize),
		maxFiles:          maxFiles,
		maxFileSize:       maxFileSize,
	}
}

func (h *CertificateHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/search", h.Search)
	r.Get("/{id}/download", h.Download)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Get("/stats", h.Stats)

		r.With(h.uploadBodyLimit.Handler).Post("/bulk-upload", h.BulkUpload)
		r.With(h.uploadBodyLimit.Handler).Post("/upload", h.Upload)
	})

	return r
}

func (h *CertificateHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.certService.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *CertificateHandler) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.certService.OpenDownload(r.Context(), chi.URLParam(r, "id"), countsAsDownload(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer dl.File.Close()

	modTime := time.Time{}
	if info, err := dl.File.Stat(); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": dl.Filename,
	}))
	http.ServeContent(w, r, dl.Filename, modTime, dl.File)
}

// countsAsDownload reports whether r fetches the file from its first byte.
// PDF viewers follow up with ranged requests that must not count again.
func countsAsDownload(r *http.Request) bool {
	rng := strings.TrimSpace(r.Header.Get("Range"))
	return rng == "" || strings.HasPrefix(rng, "bytes=0-")
}

func (h *CertificateHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	form, err := parseUpload(r, h.files, uploadLimits{
		fileField:     bulkFileField,
		maxFiles:      h.maxFiles,
		maxFileSize:   h.maxFileSize,
		allowedExts:   pdfExts,
		rejectMessage: pdfRejectMessage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	manifest, ok := form.fields[manifestField]
	if !ok {
		h.files.Remove(form.storedNames()...)
		writeError(w, r, apperrors.ValidationError(`CSV data is required in the "csv" field`))
		return
	}
	if len(form.files) == 0 {
		writeError(w, r, apperrors.ValidationError("At least one PDF file is required"))
		return
	}

	result, err := h.certService.BulkImport(r.Context(), manifest, form.files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventCertificateImport,
		Details: map[string]interface{}{"imported": result.Imported, "files": len(form.files)},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"imported": result.Imported,
	})
}

func (h *CertificateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	form, err := parseUpload(r, h.files, uploadLimits{
		fileField:     singleFileField,
		maxFiles:      1,
		maxFileSize:   h.maxFileSize,
		allowedExts:   pdfExts,
		rejectMessage: pdfRejectMessage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := form.fields[nameField]
	if len(form.files) == 0 {
		if strings.TrimSpace(name) == "" {
			writeError(w, r, apperrors.MissingRequired("Participant name"))
			return
		}
		writeError(w, r, apperrors.MissingRequired("PDF file"))
		return
	}

	cert, err := h.certService.Upload(r.Context(), name, form.files[0].StoredName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logAdminEvent(r, audit.Event{
		Type:    audit.EventCertificateUpload,
		Details: map[string]interface{}{"certificate_id": cert.ID},
	})

	writeSuccess(w)
}

func (h *CertificateHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.certService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
