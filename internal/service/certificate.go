package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/recon2root/eventsite/internal/config"
	"github.com/recon2root/eventsite/internal/database"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/util"
)

const (
	minSearchLength     = 2
	downloadNamePrefix  = "Recon2Root_Certificate_"
	certificateNotFound = "Certificate"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// CertificateFiles is the backing store for certificate PDFs.
type CertificateFiles interface {
	Open(name string) (*os.File, error)
	Exists(name string) bool
	Remove(names ...string)
}

type CertificateService struct {
	db          TxRunner
	certRepo    repository.CertificateRepository
	files       CertificateFiles
	searchLimit int
}

func NewCertificateService(db TxRunner, certRepo repository.CertificateRepository, files CertificateFiles) *CertificateService {
	return &CertificateService{
		db:          db,
		certRepo:    certRepo,
		files:       files,
		searchLimit: config.CertificateSearchLimit,
	}
}

// Search returns at most searchLimit certificates whose normalized name
// contains query. The query must have at least two characters after trimming.
func (s *CertificateService) Search(ctx context.Context, query string) ([]model.CertificateMatch, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return nil, apperrors.QueryTooShort(minSearchLength)
	}

	matches, err := s.certRepo.Search(ctx, model.NormalizeName(query), s.searchLimit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return matches, nil
}

func (s *CertificateService) FindByID(ctx context.Context, id string) (*model.Certificate, error) {
	if !util.IsValidUUID(id) {
		return nil, apperrors.NotFound(certificateNotFound)
	}

	cert, err := s.certRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if cert == nil {
		return nil, apperrors.NotFound(certificateNotFound)
	}
	return cert, nil
}

// Download is an opened certificate ready to stream. The caller closes File.
type Download struct {
	Certificate *model.Certificate
	File        *os.File
	Filename    string
}

// OpenDownload resolves id to its stored PDF. When count is set the download
// is counted, but only once the file is known to be readable.
func (s *CertificateService) OpenDownload(ctx context.Context, id string, count bool) (*Download, error) {
	cert, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := s.files.Open(cert.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "Certificate file not found on server")
		}
		return nil, apperrors.Storage(err)
	}

	if count {
		if _, err := s.certRepo.IncrementDownload(ctx, cert.ID); err != nil {
			f.Close()
			return nil, apperrors.Database(err)
		}
	}

	return &Download{
		Certificate: cert,
		File:        f,
		Filename:    DownloadFilename(cert.ParticipantName),
	}, nil
}

// DownloadFilename is the attachment name offered to the browser.
func DownloadFilename(participantName string) string {
	return downloadNamePrefix + whitespaceRun.ReplaceAllString(participantName, "_") + ".pdf"
}

// Upload records one certificate under a fresh id. It never replaces an
// existing record, so uploading twice for the same person yields two rows.
// storedFilename is removed if the record cannot be written.
func (s *CertificateService) Upload(ctx context.Context, participantName, storedFilename string) (*model.Certificate, error) {
	participantName = strings.TrimSpace(participantName)
	if participantName == "" {
		s.files.Remove(storedFilename)
		return nil, apperrors.MissingRequired("Participant name")
	}

	cert, err := s.certRepo.Insert(ctx, model.UpsertCertificateParams{
		ID:              model.NewID(),
		ParticipantName: participantName,
		Filename:        storedFilename,
	})
	if err != nil {
		s.files.Remove(storedFilename)
		return nil, apperrors.Database(err)
	}
	return cert, nil
}

func (s *CertificateService) Stats(ctx context.Context) (*model.CertificateStats, error) {
	stats, err := s.certRepo.Stats(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return stats, nil
}
