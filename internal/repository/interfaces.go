package repository

import (
	"context"
	"time"

	"github.com/jarosser06/mosaic/internal/domain"
)

type EmployerRepo interface {
	Create(ctx context.Context, e *domain.Employer) error
	GetByID(ctx context.Context, id int64) (*domain.Employer, error)
	Update(ctx context.Context, e *domain.Employer) error
	Delete(ctx context.Context, id int64) error
}

type PersonRepo interface {
	Create(ctx context.Context, p *domain.Person) error
	GetByID(ctx context.Context, id int64) (*domain.Person, error)
	Update(ctx context.Context, p *domain.Person) error
	Delete(ctx context.Context, id int64) error
}

type EmploymentHistoryRepo interface {
	Create(ctx context.Context, h *domain.EmploymentHistory) error
	GetByID(ctx context.Context, id int64) (*domain.EmploymentHistory, error)
	ListByPerson(ctx context.Context, personID int64) ([]*domain.EmploymentHistory, error)
	Update(ctx context.Context, h *domain.EmploymentHistory) error
	Delete(ctx context.Context, id int64) error
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id int64) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}

type WorkSessionRepo interface {
	Create(ctx context.Context, s *domain.WorkSession) error
	GetByID(ctx context.Context, id int64) (*domain.WorkSession, error)
	// ListByProjectDateRange returns sessions for a project whose date falls
	// in the inclusive range, ordered by start_time.
	ListByProjectDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]*domain.WorkSession, error)
	Update(ctx context.Context, s *domain.WorkSession) error
	Delete(ctx context.Context, id int64) error
}

type MeetingRepo interface {
	Create(ctx context.Context, m *domain.Meeting) error
	GetByID(ctx context.Context, id int64) (*domain.Meeting, error)
	Update(ctx context.Context, m *domain.Meeting) error
	ReplaceAttendees(ctx context.Context, meetingID int64, personIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type NoteRepo interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id int64) (*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id int64) error
}

type ReminderRepo interface {
	Create(ctx context.Context, r *domain.Reminder) error
	GetByID(ctx context.Context, id int64) (*domain.Reminder, error)
	// ListDue returns reminders eligible for dispatch at now: not completed,
	// due, not snoozed into the future, and not already dispatched for the
	// current reminder_time.
	ListDue(ctx context.Context, now time.Time) ([]*domain.Reminder, error)
	MarkDispatched(ctx context.Context, id int64, at time.Time) error
	Update(ctx context.Context, r *domain.Reminder) error
	Delete(ctx context.Context, id int64) error
}

type UserProfileRepo interface {
	Get(ctx context.Context) (*domain.UserProfile, error)
	Upsert(ctx context.Context, u *domain.UserProfile) error
}
