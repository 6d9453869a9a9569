// Package scheduler runs the periodic reminder check-due job. Due state
// lives entirely in the reminders table, so the single cron entry carries
// no state of its own and restarts lose nothing.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jarosser06/mosaic/internal/notify"
	"github.com/jarosser06/mosaic/internal/repository"
)

// Notifier is the dispatch dependency; satisfied by *notify.Dispatcher.
type Notifier interface {
	Send(ctx context.Context, p notify.Payload) (int, error)
}

// Scheduler scans for due reminders on a fixed interval and dispatches
// notifications for them. Dispatch failures are logged and never propagate:
// the scheduler runs out of band from tool callers.
type Scheduler struct {
	reminders repository.ReminderRepo
	notifier  Notifier
	logger    *slog.Logger
	interval  time.Duration

	cron     *cron.Cron
	cancel   context.CancelFunc
	baseCtx  context.Context
	dispatch sync.WaitGroup
}

// New creates a Scheduler checking every interval (60s when zero).
func New(reminders repository.ReminderRepo, notifier Notifier, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		reminders: reminders,
		notifier:  notifier,
		logger:    logger,
		interval:  interval,
		cron:      cron.New(),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Start registers the check-due job and begins ticking.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, func() {
		s.CheckDue(s.baseCtx)
	}); err != nil {
		return fmt.Errorf("registering check-due job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "interval", s.interval.String())
	return nil
}

// Stop waits for the running check to finish, then aborts in-flight
// dispatch retries and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.dispatch.Wait()
	s.logger.Info("reminder scheduler stopped")
}

// CheckDue runs one due scan: every eligible reminder is marked dispatched
// and its notification fired asynchronously. A failed dispatch does not
// block the others, and a reminder already dispatched for its current
// reminder_time is not picked up again.
func (s *Scheduler) CheckDue(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.reminders.ListDue(ctx, now)
	if err != nil {
		s.logger.Error("due reminder scan failed", "error", err)
		return
	}

	for _, rem := range due {
		// The watermark goes first so a slow dispatch cannot be re-selected
		// by the next tick.
		if err := s.reminders.MarkDispatched(ctx, rem.ID, now); err != nil {
			s.logger.Error("marking reminder dispatched failed", "reminder_id", rem.ID, "error", err)
			continue
		}

		rem := rem
		s.dispatch.Add(1)
		go func() {
			defer s.dispatch.Done()
			attempts, err := s.notifier.Send(s.baseCtx, notify.Payload{
				Title:   "Reminder",
				Message: rem.Message,
				Metadata: map[string]any{
					"reminder_id":   rem.ID,
					"reminder_time": rem.ReminderTime.Format(time.RFC3339),
				},
			})
			if err != nil {
				s.logger.Error("reminder notification failed",
					"reminder_id", rem.ID, "attempts", attempts, "error", err)
				return
			}
			s.logger.Info("reminder notification delivered",
				"reminder_id", rem.ID, "attempts", attempts)
		}()
	}
}
