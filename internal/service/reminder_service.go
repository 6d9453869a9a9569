package service

import (
	"context"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/repository"
)

// AddReminderInput carries a new reminder.
type AddReminderInput struct {
	ReminderTime      time.Time
	Message           string
	Recurrence        *domain.RecurrenceConfig
	RelatedEntityType *domain.EntityType
	RelatedEntityID   *int64
	Tags              []string
}

// ReminderService owns reminder lifecycle: creation, completion with
// recurrence materialization, and snoozing.
type ReminderService struct {
	reminders repository.ReminderRepo
	profiles  repository.UserProfileRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

// NewReminderService creates a ReminderService.
func NewReminderService(reminders repository.ReminderRepo, profiles repository.UserProfileRepo, uow db.UnitOfWork, observer UseCaseObserver) *ReminderService {
	return &ReminderService{reminders: reminders, profiles: profiles, uow: uow, observer: observer}
}

// Add creates a reminder.
func (s *ReminderService) Add(ctx context.Context, in AddReminderInput) (*domain.Reminder, error) {
	rem := &domain.Reminder{
		ReminderTime:      in.ReminderTime,
		Message:           in.Message,
		Recurrence:        in.Recurrence,
		RelatedEntityType: in.RelatedEntityType,
		RelatedEntityID:   in.RelatedEntityID,
		Tags:              in.Tags,
	}
	if err := observe(ctx, s.observer, "add_reminder", func() error {
		return s.reminders.Create(ctx, rem)
	}); err != nil {
		return nil, err
	}
	return rem, nil
}

// Get fetches a reminder by id.
func (s *ReminderService) Get(ctx context.Context, id int64) (*domain.Reminder, error) {
	return s.reminders.GetByID(ctx, id)
}

// Complete marks a reminder done. For a recurring reminder the completion
// and the insertion of the next occurrence are one transaction: both
// persist or neither does. Completion succeeds regardless of whether the
// scheduler already dispatched for the current reminder_time.
func (s *ReminderService) Complete(ctx context.Context, id int64) (*domain.Reminder, *domain.Reminder, error) {
	var completed, next *domain.Reminder
	err := observe(ctx, s.observer, "complete_reminder", func() error {
		profile, err := s.profiles.Get(ctx)
		if err != nil {
			return apperr.Internal(err)
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txReminders := repository.NewSQLiteReminderRepo(tx)
			rem, err := txReminders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if rem.IsCompleted {
				return apperr.Conflict("reminder %d is already completed", id)
			}

			rem.IsCompleted = true
			if err := txReminders.Update(ctx, rem); err != nil {
				return err
			}
			completed = rem

			if rem.Recurrence == nil {
				return nil
			}
			next = &domain.Reminder{
				ReminderTime:      domain.NextOccurrence(rem.ReminderTime, rem.Recurrence.Frequency, profile.Location()),
				Message:           rem.Message,
				Recurrence:        rem.Recurrence,
				RelatedEntityType: rem.RelatedEntityType,
				RelatedEntityID:   rem.RelatedEntityID,
				Tags:              rem.Tags,
			}
			return txReminders.Create(ctx, next)
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return completed, next, nil
}

// Snooze pushes the due evaluation of a reminder to the given instant
// without touching its reminder_time or recurrence.
func (s *ReminderService) Snooze(ctx context.Context, id int64, until time.Time) (*domain.Reminder, error) {
	var snoozed *domain.Reminder
	err := observe(ctx, s.observer, "snooze_reminder", func() error {
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txReminders := repository.NewSQLiteReminderRepo(tx)
			rem, err := txReminders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if rem.IsCompleted {
				return apperr.Conflict("reminder %d is already completed", id)
			}
			rem.SnoozedUntil = &until
			if err := txReminders.Update(ctx, rem); err != nil {
				return err
			}
			snoozed = rem
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snoozed, nil
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, id int64) error {
	return s.reminders.Delete(ctx, id)
}
