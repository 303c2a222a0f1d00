package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/recon2root/eventsite/internal/errors"
)

// SPAHandler serves files from staticDir and falls back to index.html for
// any path that is not a file, so client-side routes load the app. Paths
// under /api never fall back; they get a JSON 404.
type SPAHandler struct {
	staticDir string
	indexFile string
}

func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{
		staticDir: staticDir,
		indexFile: "index.html",
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean("/" + r.URL.Path)

	if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") {
		APINotFound(w, r)
		return
	}

	filePath := filepath.Join(h.staticDir, filepath.FromSlash(urlPath))

	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, filePath)
		return
	}

	indexPath := filepath.Join(h.staticDir, h.indexFile)
	if _, err := os.Stat(indexPath); err != nil {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, indexPath)
}

// APINotFound is the JSON 404 for unknown API routes.
func APINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apperrors.New(apperrors.ErrCodeNotFound, "Not found"))
}

// UploadsHandler serves stored uploads read-only, without directory listings.
// Mount it with the /uploads prefix stripped.
func UploadsHandler(uploadDir string) http.Handler {
	return http.FileServer(noListingFS{http.Dir(uploadDir)})
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
