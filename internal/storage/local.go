// Package storage keeps uploaded files on local disk under server-generated names.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrInvalidName  = errors.New("invalid stored file name")
)

// StoredFile describes a file already on disk.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// LocalStore writes files into a single directory. Stored names are
// <uuid><ext>; callers never choose them.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// Save copies at most maxSize bytes from src into a new file and returns its
// stored name. The extension of originalName is kept, lowercased.
func (s *LocalStore) Save(src io.Reader, originalName string, maxSize int64) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(src, maxSize+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("write %s: %w", name, copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close %s: %w", name, closeErr)
	case n > maxSize:
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return name, nil
}

// Open returns the stored file for reading. A missing file yields an error
// matching fs.ErrNotExist.
func (s *LocalStore) Open(name string) (*os.File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalStore) Exists(name string) bool {
	path, err := s.path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the named files. Empty names and missing files are
// ignored; other failures are logged and do not stop the remaining removals.
func (s *LocalStore) Remove(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		path, err := s.path(name)
		if err != nil {
			log.Warn().Str("file", name).Msg("refusing to remove invalid stored file name")
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Str("file", name).Msg("failed to remove stored file")
		}
	}
}

func (s *LocalStore) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, name), nil
}
