package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/repository"
)

var podiumRanks = map[int]bool{1: true, 2: true, 3: true}

type WinnerService struct {
	db         TxRunner
	winnerRepo repository.WinnerRepository
}

func NewWinnerService(db TxRunner, winnerRepo repository.WinnerRepository) *WinnerService {
	return &WinnerService{db: db, winnerRepo: winnerRepo}
}

func (s *WinnerService) List(ctx context.Context) ([]model.Winner, error) {
	winners, err := s.winnerRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return winners, nil
}

// Update writes every podium entry in one transaction. Entries for ranks
// outside 1-3 are ignored. It returns the number of entries written.
func (s *WinnerService) Update(ctx context.Context, winners []model.UpsertWinnerParams) (int, error) {
	if len(winners) == 0 {
		return 0, apperrors.ValidationError("Winners array is required")
	}

	written := 0
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.winnerRepo.WithTx(tx)
		for _, w := range winners {
			if !podiumRanks[w.Rank] {
				continue
			}
			err := repo.Upsert(ctx, model.UpsertWinnerParams{
				Rank:     w.Rank,
				TeamName: strings.TrimSpace(w.TeamName),
				Members:  strings.TrimSpace(w.Members),
				Score:    strings.TrimSpace(w.Score),
			})
			if err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Database(err)
	}
	return written, nil
}

type ContentService struct {
	db          TxRunner
	contentRepo repository.ContentRepository
}

func NewContentService(db TxRunner, contentRepo repository.ContentRepository) *ContentService {
	return &ContentService{db: db, contentRepo: contentRepo}
}

// Get returns all site content as a key to value map.
func (s *ContentService) Get(ctx context.Context) (map[string]string, error) {
	entries, err := s.contentRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	content := make(map[string]string, len(entries))
	for _, e := range entries {
		content[e.Key] = e.Value
	}
	return content, nil
}

// Update stores every string value in updates within one transaction.
// Values of any other type are skipped.
func (s *ContentService) Update(ctx context.Context, updates map[string]any) (int, error) {
	if updates == nil {
		return 0, apperrors.ValidationError("Updates object is required")
	}

	written := 0
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.contentRepo.WithTx(tx)
		for key, raw := range updates {
			value, ok := raw.(string)
			if !ok {
				continue
			}
			if err := repo.Upsert(ctx, key, value); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Database(err)
	}
	return written, nil
}
