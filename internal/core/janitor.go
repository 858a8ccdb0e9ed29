package core

// janitor.go evicts idle sessions in the background.
//
// The janitor is long-running and context-aware for graceful shutdown. A
// sweep never fails; it only logs what it removed.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the janitor looks for idle sessions.
const DefaultSweepInterval = time.Minute

// StartJanitor periodically drops idle sessions until ctx is cancelled.
// It blocks, so run it in its own goroutine.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	slog.Info("session janitor started",
		"interval", interval.String(),
		"idle_timeout", s.idleTimeout.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case now := <-ticker.C:
			s.runSweep(now)
		}
	}
}

func (s *Service) runSweep(now time.Time) {
	start := time.Now()
	dropped := s.Sweep(now)
	if dropped == 0 {
		slog.Debug("session sweep found nothing idle")
		return
	}
	slog.Info("idle sessions dropped",
		"dropped", dropped,
		"remaining", s.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
