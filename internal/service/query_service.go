package service

import (
	"context"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/query"
	"github.com/jarosser06/mosaic/internal/repository"
)

// QueryResult is the materialized outcome of a structured query. For
// entity queries Entities holds typed domain records in result order; for
// aggregations Agg is set instead.
type QueryResult struct {
	EntityType string
	Entities   []any
	TotalCount int64
	Agg        *query.AggResult
}

// QueryService runs the structured query engine and materializes matching
// rows into typed domain records through the repositories, so storage
// column names never reach callers.
type QueryService struct {
	engine     *query.Engine
	persons    repository.PersonRepo
	clients    repository.ClientRepo
	projects   repository.ProjectRepo
	employers  repository.EmployerRepo
	sessions   repository.WorkSessionRepo
	meetings   repository.MeetingRepo
	notes      repository.NoteRepo
	reminders  repository.ReminderRepo
	profiles   repository.UserProfileRepo
	observer   UseCaseObserver
}

// NewQueryService creates a QueryService.
func NewQueryService(
	engine *query.Engine,
	persons repository.PersonRepo,
	clients repository.ClientRepo,
	projects repository.ProjectRepo,
	employers repository.EmployerRepo,
	sessions repository.WorkSessionRepo,
	meetings repository.MeetingRepo,
	notes repository.NoteRepo,
	reminders repository.ReminderRepo,
	profiles repository.UserProfileRepo,
	observer UseCaseObserver,
) *QueryService {
	return &QueryService{
		engine:    engine,
		persons:   persons,
		clients:   clients,
		projects:  projects,
		employers: employers,
		sessions:  sessions,
		meetings:  meetings,
		notes:     notes,
		reminders: reminders,
		profiles:  profiles,
		observer:  observer,
	}
}

// Execute validates, runs, and materializes a structured query.
func (s *QueryService) Execute(ctx context.Context, q *query.Query, mode query.AccessMode) (*QueryResult, error) {
	var out *QueryResult
	err := observe(ctx, s.observer, "query", func() error {
		profile, err := s.profiles.Get(ctx)
		if err != nil {
			return apperr.Internal(err)
		}
		res, err := s.engine.Execute(ctx, q, query.Options{
			Mode:    mode,
			Profile: profile,
			Now:     time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		out = &QueryResult{EntityType: res.EntityType, TotalCount: res.TotalCount, Agg: res.Agg}
		if res.Agg != nil {
			return nil
		}
		out.Entities = make([]any, 0, len(res.IDs))
		for _, id := range res.IDs {
			entity, err := s.load(ctx, res.EntityType, id)
			if err != nil {
				return err
			}
			out.Entities = append(out.Entities, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExecuteLoose translates a recognized phrase into a structured query and
// runs it.
func (s *QueryService) ExecuteLoose(ctx context.Context, text string, mode query.AccessMode) (*QueryResult, error) {
	q, err := query.ParseLoose(text)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, q, mode)
}

func (s *QueryService) load(ctx context.Context, entityType string, id int64) (any, error) {
	switch entityType {
	case "person":
		return s.persons.GetByID(ctx, id)
	case "client":
		return s.clients.GetByID(ctx, id)
	case "project":
		return s.projects.GetByID(ctx, id)
	case "employer":
		return s.employers.GetByID(ctx, id)
	case "work_session":
		return s.sessions.GetByID(ctx, id)
	case "meeting":
		return s.meetings.GetByID(ctx, id)
	case "note":
		return s.notes.GetByID(ctx, id)
	case "reminder":
		return s.reminders.GetByID(ctx, id)
	}
	return nil, apperr.Invalid("unknown entity type %q", entityType)
}
