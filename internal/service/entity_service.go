package service

import (
	"context"

	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/repository"
)

// EntityService owns plain CRUD for the directory entities: people,
// clients, projects, employers, notes, and employment history. The
// billing-coupled entities (sessions, meetings, reminders) have their own
// services.
type EntityService struct {
	persons    repository.PersonRepo
	clients    repository.ClientRepo
	projects   repository.ProjectRepo
	employers  repository.EmployerRepo
	notes      repository.NoteRepo
	employment repository.EmploymentHistoryRepo
	profiles   repository.UserProfileRepo
	observer   UseCaseObserver
}

// NewEntityService creates an EntityService.
func NewEntityService(
	persons repository.PersonRepo,
	clients repository.ClientRepo,
	projects repository.ProjectRepo,
	employers repository.EmployerRepo,
	notes repository.NoteRepo,
	employment repository.EmploymentHistoryRepo,
	profiles repository.UserProfileRepo,
	observer UseCaseObserver,
) *EntityService {
	return &EntityService{
		persons:    persons,
		clients:    clients,
		projects:   projects,
		employers:  employers,
		notes:      notes,
		employment: employment,
		profiles:   profiles,
		observer:   observer,
	}
}

func (s *EntityService) AddPerson(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	if err := observe(ctx, s.observer, "add_person", func() error {
		return s.persons.Create(ctx, p)
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePerson applies the given mutation to the stored person. The mutate
// callback receives the current row and edits it in place.
func (s *EntityService) UpdatePerson(ctx context.Context, id int64, mutate func(*domain.Person)) (*domain.Person, error) {
	var updated *domain.Person
	if err := observe(ctx, s.observer, "update_person", func() error {
		p, err := s.persons.GetByID(ctx, id)
		if err != nil {
			return err
		}
		mutate(p)
		if err := s.persons.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntityService) AddClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if err := observe(ctx, s.observer, "add_client", func() error {
		if c.ContactPersonID != nil {
			if _, err := s.persons.GetByID(ctx, *c.ContactPersonID); err != nil {
				return err
			}
		}
		return s.clients.Create(ctx, c)
	}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *EntityService) UpdateClient(ctx context.Context, id int64, mutate func(*domain.Client)) (*domain.Client, error) {
	var updated *domain.Client
	if err := observe(ctx, s.observer, "update_client", func() error {
		c, err := s.clients.GetByID(ctx, id)
		if err != nil {
			return err
		}
		mutate(c)
		if c.ContactPersonID != nil {
			if _, err := s.persons.GetByID(ctx, *c.ContactPersonID); err != nil {
				return err
			}
		}
		if err := s.clients.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntityService) AddProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if err := observe(ctx, s.observer, "add_project", func() error {
		if _, err := s.clients.GetByID(ctx, p.ClientID); err != nil {
			return err
		}
		if p.OnBehalfOfID != nil {
			if _, err := s.employers.GetByID(ctx, *p.OnBehalfOfID); err != nil {
				return err
			}
		}
		return s.projects.Create(ctx, p)
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *EntityService) UpdateProject(ctx context.Context, id int64, mutate func(*domain.Project)) (*domain.Project, error) {
	var updated *domain.Project
	if err := observe(ctx, s.observer, "update_project", func() error {
		p, err := s.projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		mutate(p)
		if _, err := s.clients.GetByID(ctx, p.ClientID); err != nil {
			return err
		}
		if p.OnBehalfOfID != nil {
			if _, err := s.employers.GetByID(ctx, *p.OnBehalfOfID); err != nil {
				return err
			}
		}
		if err := s.projects.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntityService) AddEmployer(ctx context.Context, e *domain.Employer) (*domain.Employer, error) {
	if err := observe(ctx, s.observer, "add_employer", func() error {
		return s.employers.Create(ctx, e)
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// AddNote creates a note, defaulting privacy from the user profile when
// unset.
func (s *EntityService) AddNote(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	if err := observe(ctx, s.observer, "add_note", func() error {
		if n.PrivacyLevel == "" {
			profile, err := s.profiles.Get(ctx)
			if err == nil {
				n.PrivacyLevel = profile.DefaultPrivacy
			} else {
				n.PrivacyLevel = domain.PrivacyPrivate
			}
		}
		return s.notes.Create(ctx, n)
	}); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *EntityService) UpdateNote(ctx context.Context, id int64, mutate func(*domain.Note)) (*domain.Note, error) {
	var updated *domain.Note
	if err := observe(ctx, s.observer, "update_note", func() error {
		n, err := s.notes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		mutate(n)
		if err := s.notes.Update(ctx, n); err != nil {
			return err
		}
		updated = n
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntityService) DeleteNote(ctx context.Context, id int64) error {
	return observe(ctx, s.observer, "delete_note", func() error {
		return s.notes.Delete(ctx, id)
	})
}

// AddEmploymentHistory records a person's role at a client.
func (s *EntityService) AddEmploymentHistory(ctx context.Context, h *domain.EmploymentHistory) (*domain.EmploymentHistory, error) {
	if err := observe(ctx, s.observer, "add_employment_history", func() error {
		if _, err := s.persons.GetByID(ctx, h.PersonID); err != nil {
			return err
		}
		if _, err := s.clients.GetByID(ctx, h.ClientID); err != nil {
			return err
		}
		return s.employment.Create(ctx, h)
	}); err != nil {
		return nil, err
	}
	return h, nil
}
