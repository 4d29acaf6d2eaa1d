// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CleanupJob deletes expired authentication state.
type CleanupJob interface {
	CleanupExpired(ctx context.Context) error
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	cleanup CleanupJob
	logger  *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(cleanup CleanupJob, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		cleanup: cleanup,
		logger:  logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Expired session/token cleanup: runs daily at 3:00 AM
	_, err := s.cron.AddFunc("0 3 * * *", s.runCleanup)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the cleanup (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.runCleanup()
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info("starting expired auth state cleanup")
	if err := s.cleanup.CleanupExpired(ctx); err != nil {
		s.logger.Error("auth state cleanup failed", slog.Any("error", err))
		return
	}
	s.logger.Info("expired auth state cleanup completed")
}
