package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/recon2root/eventsite/internal/storage"
)

// FilenameLister returns every stored filename a table still references.
type FilenameLister interface {
	ListFilenames(ctx context.Context) ([]string, error)
}

// FileStore is a directory being swept.
type FileStore interface {
	List() ([]storage.StoredFile, error)
	Remove(names ...string)
}

// SweepTarget is one upload directory and the tables whose rows point into it.
type SweepTarget struct {
	Name    string
	Files   FileStore
	Ledgers []FilenameLister
}

// OrphanSweepJob removes uploaded files that no record references. Files
// younger than the grace period are left alone so uploads whose transaction
// is still running are never touched.
type OrphanSweepJob struct {
	targets  []SweepTarget
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
	done     chan struct{}
}

func NewOrphanSweepJob(interval, grace time.Duration, targets ...SweepTarget) *OrphanSweepJob {
	return &OrphanSweepJob{
		targets:  targets,
		interval: interval,
		grace:    grace,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (j *OrphanSweepJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Dur("grace", j.grace).Int("targets", len(j.targets)).Msg("orphan sweep job started")
}

func (j *OrphanSweepJob) Stop() {
	close(j.done)
	log.Info().Msg("orphan sweep job stopped")
}

func (j *OrphanSweepJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *OrphanSweepJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep orphaned uploads")
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("removed orphaned uploads")
	}
}

// Sweep runs one pass over every target and returns how many files it
// removed. A target whose listing fails is skipped; the others still run.
func (j *OrphanSweepJob) Sweep(ctx context.Context) (int, error) {
	var (
		total int
		errs  []error
	)
	for _, target := range j.targets {
		removed, err := j.sweepTarget(ctx, target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.Name, err))
			continue
		}
		total += removed
	}
	return total, errors.Join(errs...)
}

func (j *OrphanSweepJob) sweepTarget(ctx context.Context, target SweepTarget) (int, error) {
	// List files before reading the tables, so a file committed in between
	// is seen as referenced.
	files, err := target.Files.List()
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool)
	for _, ledger := range target.Ledgers {
		names, err := ledger.ListFilenames(ctx)
		if err != nil {
			return 0, err
		}
		for _, name := range names {
			referenced[name] = true
		}
	}

	cutoff := j.now().Add(-j.grace)
	var orphans []string
	for _, f := range files {
		if referenced[f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		orphans = append(orphans, f.Name)
	}

	target.Files.Remove(orphans...)
	return len(orphans), nil
}
