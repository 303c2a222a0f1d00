package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
)

// UploadedFile pairs the client-supplied file name with the name it was
// stored under. OriginalName is only ever used as a lookup key.
type UploadedFile struct {
	OriginalName string
	StoredName   string
}

// FileIndex maps lowercased original filenames to stored filenames. When two
// uploads share an original name (ignoring case) the later one wins.
type FileIndex map[string]string

func NewFileIndex(files []UploadedFile) FileIndex {
	idx := make(FileIndex, len(files))
	for _, f := range files {
		idx[strings.ToLower(f.OriginalName)] = f.StoredName
	}
	return idx
}

func (idx FileIndex) Lookup(originalName string) (string, bool) {
	stored, ok := idx[strings.ToLower(originalName)]
	return stored, ok
}

// ImportRow is one parsed manifest line.
type ImportRow struct {
	Name             string
	OriginalFilename string
}

// ParseManifest reads name,original_filename lines. Each line is split on
// its first comma and both fields are trimmed. Blank lines and lines with an
// empty field are dropped.
func ParseManifest(manifest string) []ImportRow {
	var rows []ImportRow
	for _, line := range strings.Split(manifest, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, filename, found := strings.Cut(line, ",")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		filename = strings.TrimSpace(filename)
		if name == "" || filename == "" {
			continue
		}

		rows = append(rows, ImportRow{Name: name, OriginalFilename: filename})
	}
	return rows
}

type ImportResult struct {
	Imported int `json:"imported"`
}

// planImport turns manifest rows into ledger writes. Rows whose file was not
// uploaded are skipped.
func planImport(rows []ImportRow, idx FileIndex) []model.UpsertCertificateParams {
	writes := make([]model.UpsertCertificateParams, 0, len(rows))
	for _, row := range rows {
		stored, ok := idx.Lookup(row.OriginalFilename)
		if !ok {
			continue
		}
		writes = append(writes, model.UpsertCertificateParams{
			ID:              model.ImportID(row.Name, row.OriginalFilename),
			ParticipantName: row.Name,
			Filename:        stored,
		})
	}
	return writes
}

// BulkImport matches manifest rows to uploaded PDFs and upserts every match
// in one transaction. Unmatched rows are not errors; they only lower the
// imported count. If the transaction fails, every uploaded file is removed.
// On success, uploads no row used and files displaced by a replaced row are
// removed.
func (s *CertificateService) BulkImport(ctx context.Context, manifest string, files []UploadedFile) (*ImportResult, error) {
	rows := ParseManifest(manifest)
	writes := planImport(rows, NewFileIndex(files))

	uploaded := make([]string, 0, len(files))
	for _, f := range files {
		uploaded = append(uploaded, f.StoredName)
	}

	var displaced []string
	if len(writes) > 0 {
		err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			repo := s.certRepo.WithTx(tx)
			for _, w := range writes {
				existing, err := repo.FindByID(ctx, w.ID)
				if err != nil {
					return err
				}
				if existing != nil && existing.Filename != w.Filename {
					displaced = append(displaced, existing.Filename)
				}
				if err := repo.Upsert(ctx, w); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.files.Remove(uploaded...)
			return nil, apperrors.Database(err)
		}
	}

	s.removeUnreferenced(ctx, append(uploaded, displaced...), writes)

	return &ImportResult{Imported: len(writes)}, nil
}

// removeUnreferenced deletes candidates that no ledger row points at.
func (s *CertificateService) removeUnreferenced(ctx context.Context, candidates []string, writes []model.UpsertCertificateParams) {
	kept := make(map[string]bool, len(writes))
	for _, w := range writes {
		kept[w.Filename] = true
	}

	seen := make(map[string]bool, len(candidates))
	var orphans []string
	for _, name := range candidates {
		if kept[name] || seen[name] {
			continue
		}
		seen[name] = true

		referenced, err := s.certRepo.IsFilenameReferenced(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("could not check file reference; leaving it for the sweeper")
			continue
		}
		if !referenced {
			orphans = append(orphans, name)
		}
	}

	s.files.Remove(orphans...)
}
