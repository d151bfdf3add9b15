package testsupport

import (
	"context"
	"time"
)

// DefaultSweepInterval matches the one second reminder check of the
// production backend.
const DefaultSweepInterval = time.Second

// RunReminderSweeper publishes a notification for every due reminder each
// interval until ctx is done.
func (s *Server) RunReminderSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepDueReminders(ctx)
		}
	}
}

func (s *Server) sweepDueReminders(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	due, err := s.store.TakeDue(sweepCtx, s.now())
	if err != nil {
		s.logger.Warn("reminder sweep failed", "error", err)
		return
	}

	for _, r := range due {
		s.logger.Info("triggering reminder", "task", r.Task, "time", r.Time)
		if err := s.Notify("🔔 Reminder: " + r.Task); err != nil {
			s.logger.Warn("failed to publish reminder", "task", r.Task, "error", err)
		}
	}
}
