package service

import (
	"context"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/repository"
	"github.com/jarosser06/mosaic/internal/rounding"
)

// LogMeetingInput carries a new meeting.
type LogMeetingInput struct {
	Title           string
	StartTime       time.Time
	DurationMinutes int
	Summary         string
	PrivacyLevel    *domain.PrivacyLevel
	ProjectID       *int64
	MeetingType     string
	Location        string
	Tags            []string
	AttendeeIDs     []int64
}

// MeetingPatch is a partial update; nil fields are left untouched.
type MeetingPatch struct {
	Title           *string
	StartTime       *time.Time
	DurationMinutes *int
	Summary         *string
	PrivacyLevel    *domain.PrivacyLevel
	ProjectID       **int64
	MeetingType     *string
	Location        *string
	Tags            *[]string
	AttendeeIDs     *[]int64
}

// MeetingService owns meeting logging and the meeting->work-session linker.
type MeetingService struct {
	meetings repository.MeetingRepo
	profiles repository.UserProfileRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewMeetingService creates a MeetingService.
func NewMeetingService(meetings repository.MeetingRepo, profiles repository.UserProfileRepo, uow db.UnitOfWork, observer UseCaseObserver) *MeetingService {
	return &MeetingService{meetings: meetings, profiles: profiles, uow: uow, observer: observer}
}

// Log creates a meeting. When a project is attached, the meeting and an
// auto-generated work session persist in one transaction: either both rows
// exist afterwards or neither does. The session spans the meeting's
// interval, carries its title as summary, and inherits privacy and tags.
func (s *MeetingService) Log(ctx context.Context, in LogMeetingInput) (*domain.Meeting, *int64, error) {
	var meeting *domain.Meeting
	var autoSessionID *int64

	err := observe(ctx, s.observer, "log_meeting", func() error {
		if in.DurationMinutes <= 0 {
			return apperr.Invalid("duration_minutes must be positive")
		}
		profile, err := s.profiles.Get(ctx)
		if err != nil {
			return apperr.Internal(err)
		}
		privacy := profile.DefaultPrivacy
		if in.PrivacyLevel != nil {
			privacy = *in.PrivacyLevel
		}

		meeting = &domain.Meeting{
			Title:           in.Title,
			StartTime:       in.StartTime,
			DurationMinutes: in.DurationMinutes,
			Summary:         in.Summary,
			PrivacyLevel:    privacy,
			ProjectID:       in.ProjectID,
			MeetingType:     in.MeetingType,
			Location:        in.Location,
			AttendeeIDs:     in.AttendeeIDs,
			Tags:            in.Tags,
		}

		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			if in.ProjectID != nil {
				if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, *in.ProjectID); err != nil {
					return err
				}
			}
			if err := repository.NewSQLiteMeetingRepo(tx).Create(ctx, meeting); err != nil {
				return err
			}
			if in.ProjectID == nil {
				return nil
			}

			endTime := in.StartTime.Add(time.Duration(in.DurationMinutes) * time.Minute)
			session := &domain.WorkSession{
				ProjectID:     *in.ProjectID,
				Date:          localDate(in.StartTime, profile.Location()),
				StartTime:     in.StartTime,
				EndTime:       endTime,
				DurationHours: rounding.RoundHalfHour(in.DurationMinutes),
				Summary:       in.Title,
				PrivacyLevel:  privacy,
				Tags:          in.Tags,
			}
			if err := repository.NewSQLiteWorkSessionRepo(tx).Create(ctx, session); err != nil {
				return err
			}
			autoSessionID = &session.ID
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return meeting, autoSessionID, nil
}

// Get fetches a meeting by id.
func (s *MeetingService) Get(ctx context.Context, id int64) (*domain.Meeting, error) {
	return s.meetings.GetByID(ctx, id)
}

// Update applies a partial update. The auto-generated work session of a
// project-bound meeting is deliberately left intact on every update path,
// including project changes: it is a billing record that may already be
// reflected in exported timecards.
func (s *MeetingService) Update(ctx context.Context, id int64, patch MeetingPatch) (*domain.Meeting, error) {
	var updated *domain.Meeting
	err := observe(ctx, s.observer, "update_meeting", func() error {
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txMeetings := repository.NewSQLiteMeetingRepo(tx)
			meeting, err := txMeetings.GetByID(ctx, id)
			if err != nil {
				return err
			}

			if patch.Title != nil {
				meeting.Title = *patch.Title
			}
			if patch.StartTime != nil {
				meeting.StartTime = *patch.StartTime
			}
			if patch.DurationMinutes != nil {
				meeting.DurationMinutes = *patch.DurationMinutes
			}
			if patch.Summary != nil {
				meeting.Summary = *patch.Summary
			}
			if patch.PrivacyLevel != nil {
				meeting.PrivacyLevel = *patch.PrivacyLevel
			}
			if patch.ProjectID != nil {
				if *patch.ProjectID != nil {
					if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, **patch.ProjectID); err != nil {
						return err
					}
				}
				meeting.ProjectID = *patch.ProjectID
			}
			if patch.MeetingType != nil {
				meeting.MeetingType = *patch.MeetingType
			}
			if patch.Location != nil {
				meeting.Location = *patch.Location
			}
			if patch.Tags != nil {
				meeting.Tags = *patch.Tags
			}

			if err := txMeetings.Update(ctx, meeting); err != nil {
				return err
			}
			if patch.AttendeeIDs != nil {
				if err := txMeetings.ReplaceAttendees(ctx, meeting.ID, *patch.AttendeeIDs); err != nil {
					return err
				}
				meeting.AttendeeIDs = *patch.AttendeeIDs
			}
			updated = meeting
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
