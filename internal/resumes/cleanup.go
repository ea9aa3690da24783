package resumes

import (
	"context"
	"errors"
	"time"

	"github.com/yel-hadr/resume-parser/internal/shared/storage/object"
	"github.com/yel-hadr/resume-parser/internal/shared/telemetry"
)

// Sweeper removes resumes older than the retention window, deleting the
// stored file first and then the row.
type Sweeper struct {
	Repo     Repo
	Store    object.ObjectStore
	MaxAge   time.Duration
	Interval time.Duration

	now func() time.Time
}

// NewSweeper constructs a sweeper. Interval defaults to 24h.
func NewSweeper(repo Repo, store object.ObjectStore, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		Repo:     repo,
		Store:    store,
		MaxAge:   maxAge,
		Interval: 24 * time.Hour,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick until the context ends.
func (s *Sweeper) Run(ctx context.Context) {
	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes all expired resumes. Individual failures are logged
// and skipped so one bad record cannot stall the sweep.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := s.now().UTC().Add(-s.MaxAge)
	expired, err := s.Repo.ListExpired(ctx, cutoff)
	if err != nil {
		telemetry.Error("sweep.list", map[string]any{"error": err.Error()})
		return
	}

	removed := 0
	for _, res := range expired {
		if err := s.remove(ctx, res); err != nil {
			telemetry.Error("sweep.remove", map[string]any{
				"resume_id": res.ID,
				"error":     err.Error(),
			})
			continue
		}
		removed++
	}

	if len(expired) > 0 {
		telemetry.Info("sweep.complete", map[string]any{
			"expired": len(expired),
			"removed": removed,
		})
	}
}

func (s *Sweeper) remove(ctx context.Context, res Resume) error {
	if res.FilePath != "" {
		if err := s.Store.Delete(ctx, res.FilePath); err != nil {
			return err
		}
	}
	if err := s.Repo.Delete(ctx, res.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
