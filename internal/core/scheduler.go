package core

// scheduler.go runs journal retention in the background.
//
// The job runs once on start, then every interval, and stops with its context.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls how long journal entries are kept.
type RetentionConfig struct {
	MaxAge        time.Duration // default 30 days
	CheckInterval time.Duration // default 1h
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	return c
}

// StartRetention prunes the journal until ctx is cancelled. Run it in a goroutine.
func (s *Service) StartRetention(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("journal retention started", "max_age", cfg.MaxAge, "interval", cfg.CheckInterval)

	s.pruneJournal(cfg.MaxAge)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("journal retention stopped")
			return
		case <-ticker.C:
			s.pruneJournal(cfg.MaxAge)
		}
	}
}

func (s *Service) pruneJournal(maxAge time.Duration) {
	if n := s.journal.Prune(s.now().Add(-maxAge)); n > 0 {
		slog.Info("journal pruned", "entries", n)
	}
}
