package domain

import "time"

// RecurrenceConfig describes how to compute the next occurrence of a
// completed recurring reminder.
type RecurrenceConfig struct {
	Frequency RecurrenceFrequency `json:"frequency"`
}

type Reminder struct {
	ID                int64
	ReminderTime      time.Time
	Message           string
	IsCompleted       bool
	Recurrence        *RecurrenceConfig
	RelatedEntityType *EntityType
	RelatedEntityID   *int64
	SnoozedUntil      *time.Time
	// DispatchedAt is the scheduler's at-most-once watermark: once set at or
	// after ReminderTime, the due scan skips the row until the user advances
	// its state.
	DispatchedAt *time.Time
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Due reports whether the reminder should be dispatched at now.
func (r *Reminder) Due(now time.Time) bool {
	if r.IsCompleted || r.ReminderTime.After(now) {
		return false
	}
	if r.SnoozedUntil != nil && r.SnoozedUntil.After(now) {
		return false
	}
	if r.DispatchedAt != nil && !r.DispatchedAt.Before(r.ReminderTime) {
		return false
	}
	return true
}
