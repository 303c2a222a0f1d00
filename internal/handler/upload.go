package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/recon2root/eventsite/internal/config"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/service"
	"github.com/recon2root/eventsite/internal/storage"
)

// FileSaver stores uploaded files under server-generated names.
type FileSaver interface {
	Save(src io.Reader, originalName string, maxSize int64) (string, error)
	Remove(names ...string)
}

// uploadForm is a parsed multipart request. Files are already on disk.
type uploadForm struct {
	fields map[string]string
	files  []service.UploadedFile
}

func (f *uploadForm) storedNames() []string {
	names := make([]string, 0, len(f.files))
	for _, file := range f.files {
		names = append(names, file.StoredName)
	}
	return names
}

// uploadLimits says which files a form may carry. Files are accepted only
// under fileField and only with one of allowedExts; others fail with
// rejectMessage.
type uploadLimits struct {
	fileField     string
	maxFiles      int
	maxFileSize   int64
	allowedExts   []string
	rejectMessage string
}

func (l uploadLimits) allows(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range l.allowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

var (
	pdfExts   = []string{".pdf"}
	imageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
	videoExts = []string{".mp4", ".webm", ".mov"}
)

// parseUpload streams a multipart body, saving every allowed file sent under
// limits.fileField and collecting plain text fields. On any error, files
// saved so far are removed before returning.
func parseUpload(r *http.Request, saver FileSaver, limits uploadLimits) (*uploadForm, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, apperrors.ValidationError("Expected a multipart/form-data request")
	}

	form := &uploadForm{fields: make(map[string]string)}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			saver.Remove(form.storedNames()...)
			return nil, malformedBody(err)
		}

		err = form.readPart(part, saver, limits)
		part.Close()
		if err != nil {
			saver.Remove(form.storedNames()...)
			return nil, err
		}
	}
}

func (f *uploadForm) readPart(part *multipart.Part, saver FileSaver, limits uploadLimits) error {
	filename := part.FileName()
	if filename == "" {
		value, err := io.ReadAll(io.LimitReader(part, config.ManifestMaxSize+1))
		if err != nil {
			return malformedBody(err)
		}
		if int64(len(value)) > config.ManifestMaxSize {
			return apperrors.PayloadTooLarge("Field too large")
		}
		f.fields[part.FormName()] = string(value)
		return nil
	}

	if part.FormName() != limits.fileField {
		return apperrors.ValidationError("Unexpected file field: " + part.FormName())
	}
	if !limits.allows(filename) {
		return apperrors.UnsupportedFile(limits.rejectMessage)
	}
	if len(f.files) >= limits.maxFiles {
		return apperrors.ValidationError("Too many files")
	}

	stored, err := saver.Save(part, filename, limits.maxFileSize)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return apperrors.PayloadTooLarge("File too large")
		}
		if isBodyTooLarge(err) {
			return apperrors.PayloadTooLarge("Request body too large")
		}
		return apperrors.Storage(err)
	}

	f.files = append(f.files, service.UploadedFile{OriginalName: filename, StoredName: stored})
	return nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func malformedBody(err error) error {
	if isBodyTooLarge(err) {
		return apperrors.PayloadTooLarge("Request body too large")
	}
	return apperrors.ValidationError("Malformed multipart body")
}
