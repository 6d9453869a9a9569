package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/repository"
	"github.com/jarosser06/mosaic/internal/rounding"
)

// genericSummary replaces internal session summaries in externally
// presented timecards.
const genericSummary = "Project work"

// LogWorkSessionInput carries a new work session.
type LogWorkSessionInput struct {
	ProjectID    int64
	StartTime    time.Time
	EndTime      time.Time
	Summary      string
	PrivacyLevel *domain.PrivacyLevel
	Tags         []string
}

// WorkSessionPatch is a partial update; nil fields are left untouched.
type WorkSessionPatch struct {
	ProjectID    *int64
	StartTime    *time.Time
	EndTime      *time.Time
	Summary      *string
	PrivacyLevel *domain.PrivacyLevel
	Tags         *[]string
}

// TimecardRow is one per-day aggregate of a project's work.
type TimecardRow struct {
	Date    time.Time
	Hours   decimal.Decimal
	Summary string
}

// WorkSessionService owns session logging, recomputation on time edits,
// and the privacy-filtered timecard aggregation.
type WorkSessionService struct {
	sessions repository.WorkSessionRepo
	profiles repository.UserProfileRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewWorkSessionService creates a WorkSessionService.
func NewWorkSessionService(sessions repository.WorkSessionRepo, profiles repository.UserProfileRepo, uow db.UnitOfWork, observer UseCaseObserver) *WorkSessionService {
	return &WorkSessionService{sessions: sessions, profiles: profiles, uow: uow, observer: observer}
}

// Log creates a work session. Duration and date derive from the interval:
// duration is the half-hour-rounded span, date the local calendar date of
// the start instant in the user's timezone.
func (s *WorkSessionService) Log(ctx context.Context, in LogWorkSessionInput) (*domain.WorkSession, error) {
	var session *domain.WorkSession
	err := observe(ctx, s.observer, "log_work_session", func() error {
		if !in.EndTime.After(in.StartTime) {
			return apperr.Invalid("end_time must be after start_time")
		}
		profile, err := s.profiles.Get(ctx)
		if err != nil {
			return apperr.Internal(err)
		}

		duration, err := rounding.DurationRounded(in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		privacy := profile.DefaultPrivacy
		if in.PrivacyLevel != nil {
			privacy = *in.PrivacyLevel
		}

		session = &domain.WorkSession{
			ProjectID:     in.ProjectID,
			Date:          localDate(in.StartTime, profile.Location()),
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			DurationHours: duration,
			Summary:       in.Summary,
			PrivacyLevel:  privacy,
			Tags:          in.Tags,
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txProjects := repository.NewSQLiteProjectRepo(tx)
			if _, err := txProjects.GetByID(ctx, in.ProjectID); err != nil {
				return err
			}
			return repository.NewSQLiteWorkSessionRepo(tx).Create(ctx, session)
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Get fetches a work session by id.
func (s *WorkSessionService) Get(ctx context.Context, id int64) (*domain.WorkSession, error) {
	return s.sessions.GetByID(ctx, id)
}

// Update applies a partial update. Any change to the interval recomputes
// duration_hours and date in the same commit.
func (s *WorkSessionService) Update(ctx context.Context, id int64, patch WorkSessionPatch) (*domain.WorkSession, error) {
	var updated *domain.WorkSession
	err := observe(ctx, s.observer, "update_work_session", func() error {
		profile, err := s.profiles.Get(ctx)
		if err != nil {
			return apperr.Internal(err)
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txSessions := repository.NewSQLiteWorkSessionRepo(tx)
			session, err := txSessions.GetByID(ctx, id)
			if err != nil {
				return err
			}

			timesChanged := false
			if patch.ProjectID != nil {
				if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, *patch.ProjectID); err != nil {
					return err
				}
				session.ProjectID = *patch.ProjectID
			}
			if patch.StartTime != nil {
				session.StartTime = *patch.StartTime
				timesChanged = true
			}
			if patch.EndTime != nil {
				session.EndTime = *patch.EndTime
				timesChanged = true
			}
			if patch.Summary != nil {
				session.Summary = *patch.Summary
			}
			if patch.PrivacyLevel != nil {
				session.PrivacyLevel = *patch.PrivacyLevel
			}
			if patch.Tags != nil {
				session.Tags = *patch.Tags
			}

			if timesChanged {
				duration, err := rounding.DurationRounded(session.StartTime, session.EndTime)
				if err != nil {
					return err
				}
				if !session.EndTime.After(session.StartTime) {
					return apperr.Invalid("end_time must be after start_time")
				}
				session.DurationHours = duration
				session.Date = localDate(session.StartTime, profile.Location())
			}

			if err := txSessions.Update(ctx, session); err != nil {
				return err
			}
			updated = session
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Timecard aggregates a project's sessions per day over the inclusive date
// range. Public sessions always appear with their summary; internal
// sessions always contribute hours but carry a genericized summary unless
// includePrivate is set; private sessions appear only when includePrivate.
// Sums are exact decimal additions of the stored durations.
func (s *WorkSessionService) Timecard(ctx context.Context, projectID int64, from, to time.Time, includePrivate bool) ([]TimecardRow, error) {
	sessions, err := s.sessions.ListByProjectDateRange(ctx, projectID, from, to)
	if err != nil {
		return nil, err
	}

	type group struct {
		hours     decimal.Decimal
		summaries []string
		seen      map[string]bool
	}
	groups := map[string]*group{}
	var order []string

	for _, sess := range sessions {
		summary := sess.Summary
		switch sess.PrivacyLevel {
		case domain.PrivacyPrivate:
			if !includePrivate {
				continue
			}
		case domain.PrivacyInternal:
			if !includePrivate {
				summary = genericSummary
			}
		}

		key := sess.Date.Format("2006-01-02")
		g, ok := groups[key]
		if !ok {
			g = &group{hours: decimal.Zero, seen: map[string]bool{}}
			groups[key] = g
			order = append(order, key)
		}
		g.hours = g.hours.Add(sess.DurationHours)
		if summary != "" && !g.seen[summary] {
			g.seen[summary] = true
			g.summaries = append(g.summaries, summary)
		}
	}

	sort.Strings(order)
	rows := make([]TimecardRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		date, _ := time.Parse("2006-01-02", key)
		rows = append(rows, TimecardRow{
			Date:    date,
			Hours:   g.hours,
			Summary: strings.Join(g.summaries, "; "),
		})
	}
	return rows, nil
}

// localDate truncates an instant to its calendar date in loc.
func localDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
