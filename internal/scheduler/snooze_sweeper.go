package scheduler

import (
	"context"
	"time"

	tasksservice "salespulse_backend/internal/tasks/service"
	"salespulse_backend/platform/logger"
)

const defaultSnoozeSweepInterval = 5 * time.Minute

// SnoozeSweeper periodically re-surfaces snoozed tasks whose wake time has
// passed, flipping them back to pending.
type SnoozeSweeper struct {
	tasks    *tasksservice.Service
	log      *logger.Logger
	interval time.Duration
}

func NewSnoozeSweeper(tasks *tasksservice.Service, log *logger.Logger, interval time.Duration) *SnoozeSweeper {
	if interval <= 0 {
		interval = defaultSnoozeSweepInterval
	}

	return &SnoozeSweeper{
		tasks:    tasks,
		log:      log,
		interval: interval,
	}
}

func (s *SnoozeSweeper) Run(ctx context.Context) {
	if s == nil || s.tasks == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SnoozeSweeper) sweep(ctx context.Context) {
	woken, err := s.tasks.WakeExpiredSnoozes(ctx)
	if err != nil {
		s.log.Warn("snooze sweep failed", "error", err)
		return
	}

	if woken > 0 {
		s.log.Info("snooze sweep woke tasks", "woken", woken)
	}
}
