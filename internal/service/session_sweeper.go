package service

import (
	"context"
	"time"

	"github.com/linguaflow/auth-service/internal/repository"
	"go.uber.org/zap"
)

// SessionSweeper periodically marks expired sessions invalid and hard-deletes
// rows past the retention window. Lookups filter on expiry anyway, so the
// sweep is for audit-table hygiene, not correctness.
type SessionSweeper struct {
	sessionRepo   repository.SessionRepository
	interval      time.Duration
	retentionDays int
	logger        *zap.Logger
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(sessionRepo repository.SessionRepository, interval time.Duration, retentionDays int, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessionRepo:   sessionRepo,
		interval:      interval,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs one sweep pass immediately
func (s *SessionSweeper) Sweep(ctx context.Context) (swept, purged int64) {
	return s.sweep(ctx)
}

func (s *SessionSweeper) sweep(ctx context.Context) (int64, int64) {
	swept, err := s.sessionRepo.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("failed to sweep expired sessions", zap.Error(err))
	}

	purged, err := s.sessionRepo.PurgeOlderThan(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("failed to purge old sessions", zap.Error(err))
	}

	if swept > 0 || purged > 0 {
		s.logger.Info("session sweep completed",
			zap.Int64("invalidated", swept),
			zap.Int64("purged", purged),
		)
	}

	return swept, purged
}
