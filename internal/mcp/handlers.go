package mcp

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/notify"
	"github.com/jarosser06/mosaic/internal/query"
	"github.com/jarosser06/mosaic/internal/service"
)

// Services bundles the dependencies the tool façade dispatches to.
type Services struct {
	Sessions  *service.WorkSessionService
	Meetings  *service.MeetingService
	Reminders *service.ReminderService
	Entities  *service.EntityService
	Queries   *service.QueryService
	Notifier  *notify.Dispatcher
}

func handleLogWorkSession(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "project_id", "start_time", "end_time", "summary", "privacy_level", "tags"); err != nil {
			return errResult(err), nil
		}
		projectID, err := intArg(req, "project_id")
		if err != nil {
			return errResult(err), nil
		}
		start, err := timeArg(req, "start_time")
		if err != nil {
			return errResult(err), nil
		}
		end, err := timeArg(req, "end_time")
		if err != nil {
			return errResult(err), nil
		}
		summary, err := optStrArg(req, "summary")
		if err != nil {
			return errResult(err), nil
		}
		privacy, err := optPrivacyArg(req)
		if err != nil {
			return errResult(err), nil
		}
		tags, err := optTagsArg(req, "tags")
		if err != nil {
			return errResult(err), nil
		}

		in := service.LogWorkSessionInput{
			ProjectID:    projectID,
			StartTime:    start,
			EndTime:      end,
			PrivacyLevel: privacy,
		}
		if summary != nil {
			in.Summary = *summary
		}
		if tags != nil {
			in.Tags = *tags
		}
		session, err := s.Sessions.Log(ctx, in)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toWorkSessionDTO(session)), nil
	}
}

func handleLogMeeting(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "title", "start_time", "duration_minutes", "summary",
			"privacy_level", "project_id", "meeting_type", "location", "tags", "attendee_ids"); err != nil {
			return errResult(err), nil
		}
		title, err := strArg(req, "title")
		if err != nil {
			return errResult(err), nil
		}
		start, err := timeArg(req, "start_time")
		if err != nil {
			return errResult(err), nil
		}
		duration, err := intArg(req, "duration_minutes")
		if err != nil {
			return errResult(err), nil
		}
		summary, err := optStrArg(req, "summary")
		if err != nil {
			return errResult(err), nil
		}
		privacy, err := optPrivacyArg(req)
		if err != nil {
			return errResult(err), nil
		}
		projectID, err := optIntArg(req, "project_id")
		if err != nil {
			return errResult(err), nil
		}
		meetingType, err := optStrArg(req, "meeting_type")
		if err != nil {
			return errResult(err), nil
		}
		location, err := optStrArg(req, "location")
		if err != nil {
			return errResult(err), nil
		}
		tags, err := optTagsArg(req, "tags")
		if err != nil {
			return errResult(err), nil
		}
		attendees, err := optIntListArg(req, "attendee_ids")
		if err != nil {
			return errResult(err), nil
		}

		in := service.LogMeetingInput{
			Title:           title,
			StartTime:       start,
			DurationMinutes: int(duration),
			PrivacyLevel:    privacy,
			ProjectID:       projectID,
		}
		if summary != nil {
			in.Summary = *summary
		}
		if meetingType != nil {
			in.MeetingType = *meetingType
		}
		if location != nil {
			in.Location = *location
		}
		if tags != nil {
			in.Tags = *tags
		}
		if attendees != nil {
			in.AttendeeIDs = *attendees
		}
		meeting, autoSessionID, err := s.Meetings.Log(ctx, in)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toMeetingDTO(meeting, autoSessionID)), nil
	}
}

func handleUpdateWorkSession(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "work_session_id", "project_id", "start_time", "end_time",
			"summary", "privacy_level", "tags"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "work_session_id")
		if err != nil {
			return errResult(err), nil
		}
		patch := service.WorkSessionPatch{}
		if patch.ProjectID, err = optIntArg(req, "project_id"); err != nil {
			return errResult(err), nil
		}
		if patch.StartTime, err = optTimeArg(req, "start_time"); err != nil {
			return errResult(err), nil
		}
		if patch.EndTime, err = optTimeArg(req, "end_time"); err != nil {
			return errResult(err), nil
		}
		if patch.Summary, err = optStrArg(req, "summary"); err != nil {
			return errResult(err), nil
		}
		if patch.PrivacyLevel, err = optPrivacyArg(req); err != nil {
			return errResult(err), nil
		}
		if patch.Tags, err = optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		}

		session, err := s.Sessions.Update(ctx, id, patch)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toWorkSessionDTO(session)), nil
	}
}

func handleUpdateMeeting(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "meeting_id", "title", "start_time", "duration_minutes",
			"summary", "privacy_level", "project_id", "meeting_type", "location", "tags", "attendee_ids"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "meeting_id")
		if err != nil {
			return errResult(err), nil
		}
		patch := service.MeetingPatch{}
		if patch.Title, err = optStrArg(req, "title"); err != nil {
			return errResult(err), nil
		}
		if patch.StartTime, err = optTimeArg(req, "start_time"); err != nil {
			return errResult(err), nil
		}
		duration, err := optIntArg(req, "duration_minutes")
		if err != nil {
			return errResult(err), nil
		}
		if duration != nil {
			d := int(*duration)
			patch.DurationMinutes = &d
		}
		if patch.Summary, err = optStrArg(req, "summary"); err != nil {
			return errResult(err), nil
		}
		if patch.PrivacyLevel, err = optPrivacyArg(req); err != nil {
			return errResult(err), nil
		}
		// project_id: null detaches, an id reassigns, absent leaves as-is.
		if raw, ok := req.GetArguments()["project_id"]; ok {
			if raw == nil {
				var nilID *int64
				patch.ProjectID = &nilID
			} else {
				n, err := coerceInt("project_id", raw)
				if err != nil {
					return errResult(err), nil
				}
				p := &n
				patch.ProjectID = &p
			}
		}
		if patch.MeetingType, err = optStrArg(req, "meeting_type"); err != nil {
			return errResult(err), nil
		}
		if patch.Location, err = optStrArg(req, "location"); err != nil {
			return errResult(err), nil
		}
		if patch.Tags, err = optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		}
		if patch.AttendeeIDs, err = optIntListArg(req, "attendee_ids"); err != nil {
			return errResult(err), nil
		}

		meeting, err := s.Meetings.Update(ctx, id, patch)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toMeetingDTO(meeting, nil)), nil
	}
}

func handleAddPerson(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "full_name", "email", "phone", "linkedin_url", "company",
			"title", "notes", "additional_info", "is_stakeholder", "tags"); err != nil {
			return errResult(err), nil
		}
		fullName, err := strArg(req, "full_name")
		if err != nil {
			return errResult(err), nil
		}
		p := &domain.Person{FullName: fullName}
		if err := applyPersonArgs(req, p); err != nil {
			return errResult(err), nil
		}
		person, err := s.Entities.AddPerson(ctx, p)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toPersonDTO(person)), nil
	}
}

func applyPersonArgs(req mcp.CallToolRequest, p *domain.Person) error {
	if v, err := optStrArg(req, "email"); err != nil {
		return err
	} else if v != nil {
		p.Email = *v
	}
	if v, err := optStrArg(req, "phone"); err != nil {
		return err
	} else if v != nil {
		p.Phone = *v
	}
	if v, err := optStrArg(req, "linkedin_url"); err != nil {
		return err
	} else if v != nil {
		p.LinkedinURL = *v
	}
	if v, err := optStrArg(req, "company"); err != nil {
		return err
	} else if v != nil {
		p.Company = *v
	}
	if v, err := optStrArg(req, "title"); err != nil {
		return err
	} else if v != nil {
		p.Title = *v
	}
	if v, err := optStrArg(req, "notes"); err != nil {
		return err
	} else if v != nil {
		p.Notes = *v
	}
	if raw, ok := req.GetArguments()["additional_info"]; ok {
		m, ok := raw.(map[string]any)
		if !ok {
			return apperr.Invalid("additional_info must be an object of strings")
		}
		info := make(map[string]string, len(m))
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return apperr.Invalid("additional_info values must be strings")
			}
			info[k] = s
		}
		p.AdditionalInfo = info
	}
	if v, err := optBoolArg(req, "is_stakeholder"); err != nil {
		return err
	} else if v != nil {
		p.IsStakeholder = *v
	}
	if v, err := optTagsArg(req, "tags"); err != nil {
		return err
	} else if v != nil {
		p.Tags = *v
	}
	return nil
}

func handleUpdatePerson(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "person_id", "full_name", "email", "phone", "linkedin_url",
			"company", "title", "notes", "additional_info", "is_stakeholder", "tags"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "person_id")
		if err != nil {
			return errResult(err), nil
		}
		fullName, err := optStrArg(req, "full_name")
		if err != nil {
			return errResult(err), nil
		}
		var applyErr error
		person, err := s.Entities.UpdatePerson(ctx, id, func(p *domain.Person) {
			if fullName != nil {
				p.FullName = *fullName
			}
			applyErr = applyPersonArgs(req, p)
		})
		if err != nil {
			return errResult(err), nil
		}
		if applyErr != nil {
			return errResult(applyErr), nil
		}
		return jsonResult(toPersonDTO(person)), nil
	}
}

func handleAddClient(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "name", "type", "status", "contact_person_id", "notes", "tags"); err != nil {
			return errResult(err), nil
		}
		name, err := strArg(req, "name")
		if err != nil {
			return errResult(err), nil
		}
		c := &domain.Client{Name: name}
		if v, err := optStrArg(req, "type"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			if *v != string(domain.ClientCompany) && *v != string(domain.ClientIndividual) {
				return errResult(apperr.Invalid("type must be company or individual")), nil
			}
			c.Type = domain.ClientType(*v)
		}
		if v, err := optStrArg(req, "status"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			if *v != string(domain.ClientActive) && *v != string(domain.ClientPast) {
				return errResult(apperr.Invalid("status must be active or past")), nil
			}
			c.Status = domain.ClientStatus(*v)
		}
		if c.ContactPersonID, err = optIntArg(req, "contact_person_id"); err != nil {
			return errResult(err), nil
		}
		if v, err := optStrArg(req, "notes"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			c.Notes = *v
		}
		if v, err := optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			c.Tags = *v
		}
		client, err := s.Entities.AddClient(ctx, c)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toClientDTO(client)), nil
	}
}

func handleUpdateClient(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "client_id", "name", "type", "status", "contact_person_id", "notes", "tags"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "client_id")
		if err != nil {
			return errResult(err), nil
		}
		name, err := optStrArg(req, "name")
		if err != nil {
			return errResult(err), nil
		}
		typeStr, err := optStrArg(req, "type")
		if err != nil {
			return errResult(err), nil
		}
		if typeStr != nil && *typeStr != string(domain.ClientCompany) && *typeStr != string(domain.ClientIndividual) {
			return errResult(apperr.Invalid("type must be company or individual")), nil
		}
		statusStr, err := optStrArg(req, "status")
		if err != nil {
			return errResult(err), nil
		}
		if statusStr != nil && *statusStr != string(domain.ClientActive) && *statusStr != string(domain.ClientPast) {
			return errResult(apperr.Invalid("status must be active or past")), nil
		}
		contact, err := optIntArg(req, "contact_person_id")
		if err != nil {
			return errResult(err), nil
		}
		notes, err := optStrArg(req, "notes")
		if err != nil {
			return errResult(err), nil
		}
		tags, err := optTagsArg(req, "tags")
		if err != nil {
			return errResult(err), nil
		}

		client, err := s.Entities.UpdateClient(ctx, id, func(c *domain.Client) {
			if name != nil {
				c.Name = *name
			}
			if typeStr != nil {
				c.Type = domain.ClientType(*typeStr)
			}
			if statusStr != nil {
				c.Status = domain.ClientStatus(*statusStr)
			}
			if contact != nil {
				c.ContactPersonID = contact
			}
			if notes != nil {
				c.Notes = *notes
			}
			if tags != nil {
				c.Tags = *tags
			}
		})
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toClientDTO(client)), nil
	}
}

func handleAddProject(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "name", "client_id", "on_behalf_of_id", "description",
			"status", "start_date", "end_date", "tags"); err != nil {
			return errResult(err), nil
		}
		name, err := strArg(req, "name")
		if err != nil {
			return errResult(err), nil
		}
		clientID, err := intArg(req, "client_id")
		if err != nil {
			return errResult(err), nil
		}
		p := &domain.Project{Name: name, ClientID: clientID}
		if p.OnBehalfOfID, err = optIntArg(req, "on_behalf_of_id"); err != nil {
			return errResult(err), nil
		}
		if v, err := optStrArg(req, "description"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			p.Description = *v
		}
		if v, err := optStrArg(req, "status"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			if !validProjectStatus(*v) {
				return errResult(apperr.Invalid("status must be active, paused, or completed")), nil
			}
			p.Status = domain.ProjectStatus(*v)
		}
		if p.StartDate, err = optDateArg(req, "start_date"); err != nil {
			return errResult(err), nil
		}
		if p.EndDate, err = optDateArg(req, "end_date"); err != nil {
			return errResult(err), nil
		}
		if v, err := optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			p.Tags = *v
		}
		project, err := s.Entities.AddProject(ctx, p)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toProjectDTO(project)), nil
	}
}

func validProjectStatus(s string) bool {
	switch domain.ProjectStatus(s) {
	case domain.ProjectActive, domain.ProjectPaused, domain.ProjectCompleted:
		return true
	}
	return false
}

func handleUpdateProject(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "project_id", "name", "client_id", "on_behalf_of_id",
			"description", "status", "start_date", "end_date", "tags"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "project_id")
		if err != nil {
			return errResult(err), nil
		}
		name, err := optStrArg(req, "name")
		if err != nil {
			return errResult(err), nil
		}
		clientID, err := optIntArg(req, "client_id")
		if err != nil {
			return errResult(err), nil
		}
		onBehalf, err := optIntArg(req, "on_behalf_of_id")
		if err != nil {
			return errResult(err), nil
		}
		description, err := optStrArg(req, "description")
		if err != nil {
			return errResult(err), nil
		}
		statusStr, err := optStrArg(req, "status")
		if err != nil {
			return errResult(err), nil
		}
		if statusStr != nil && !validProjectStatus(*statusStr) {
			return errResult(apperr.Invalid("status must be active, paused, or completed")), nil
		}
		startDate, err := optDateArg(req, "start_date")
		if err != nil {
			return errResult(err), nil
		}
		endDate, err := optDateArg(req, "end_date")
		if err != nil {
			return errResult(err), nil
		}
		tags, err := optTagsArg(req, "tags")
		if err != nil {
			return errResult(err), nil
		}

		project, err := s.Entities.UpdateProject(ctx, id, func(p *domain.Project) {
			if name != nil {
				p.Name = *name
			}
			if clientID != nil {
				p.ClientID = *clientID
			}
			if onBehalf != nil {
				p.OnBehalfOfID = onBehalf
			}
			if description != nil {
				p.Description = *description
			}
			if statusStr != nil {
				p.Status = domain.ProjectStatus(*statusStr)
			}
			if startDate != nil {
				p.StartDate = startDate
			}
			if endDate != nil {
				p.EndDate = endDate
			}
			if tags != nil {
				p.Tags = *tags
			}
		})
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toProjectDTO(project)), nil
	}
}

func handleAddEmploymentHistory(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "person_id", "client_id", "role", "start_date", "end_date"); err != nil {
			return errResult(err), nil
		}
		personID, err := intArg(req, "person_id")
		if err != nil {
			return errResult(err), nil
		}
		clientID, err := intArg(req, "client_id")
		if err != nil {
			return errResult(err), nil
		}
		h := &domain.EmploymentHistory{PersonID: personID, ClientID: clientID}
		if v, err := optStrArg(req, "role"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			h.Role = *v
		}
		if h.StartDate, err = optDateArg(req, "start_date"); err != nil {
			return errResult(err), nil
		}
		if h.EndDate, err = optDateArg(req, "end_date"); err != nil {
			return errResult(err), nil
		}
		history, err := s.Entities.AddEmploymentHistory(ctx, h)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toEmploymentHistoryDTO(history)), nil
	}
}

func handleAddEmployer(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "name", "notes", "tags"); err != nil {
			return errResult(err), nil
		}
		name, err := strArg(req, "name")
		if err != nil {
			return errResult(err), nil
		}
		e := &domain.Employer{Name: name}
		if v, err := optStrArg(req, "notes"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			e.Notes = *v
		}
		if v, err := optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			e.Tags = *v
		}
		employer, err := s.Entities.AddEmployer(ctx, e)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toEmployerDTO(employer)), nil
	}
}

func handleAddNote(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "text", "privacy_level", "entity_type", "entity_id", "tags"); err != nil {
			return errResult(err), nil
		}
		text, err := strArg(req, "text")
		if err != nil {
			return errResult(err), nil
		}
		n := &domain.Note{Text: text}
		privacy, err := optPrivacyArg(req)
		if err != nil {
			return errResult(err), nil
		}
		if privacy != nil {
			n.PrivacyLevel = *privacy
		}
		if n.EntityType, n.EntityID, err = optEntityRefArgs(req, "entity_type", "entity_id"); err != nil {
			return errResult(err), nil
		}
		if v, err := optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			n.Tags = *v
		}
		note, err := s.Entities.AddNote(ctx, n)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toNoteDTO(note)), nil
	}
}

func handleUpdateNote(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "note_id", "text", "privacy_level", "entity_type", "entity_id", "tags"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "note_id")
		if err != nil {
			return errResult(err), nil
		}
		text, err := optStrArg(req, "text")
		if err != nil {
			return errResult(err), nil
		}
		privacy, err := optPrivacyArg(req)
		if err != nil {
			return errResult(err), nil
		}
		entityType, entityID, err := optEntityRefArgs(req, "entity_type", "entity_id")
		if err != nil {
			return errResult(err), nil
		}
		tags, err := optTagsArg(req, "tags")
		if err != nil {
			return errResult(err), nil
		}

		note, err := s.Entities.UpdateNote(ctx, id, func(n *domain.Note) {
			if text != nil {
				n.Text = *text
			}
			if privacy != nil {
				n.PrivacyLevel = *privacy
			}
			if entityType != nil {
				n.EntityType = entityType
				n.EntityID = entityID
			}
			if tags != nil {
				n.Tags = *tags
			}
		})
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toNoteDTO(note)), nil
	}
}

func handleDeleteNote(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "note_id"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "note_id")
		if err != nil {
			return errResult(err), nil
		}
		if err := s.Entities.DeleteNote(ctx, id); err != nil {
			return errResult(err), nil
		}
		return jsonResult(map[string]any{"deleted": true, "note_id": id}), nil
	}
}

func handleAddReminder(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "reminder_time", "message", "recurrence_config",
			"related_entity_type", "related_entity_id", "tags"); err != nil {
			return errResult(err), nil
		}
		reminderTime, err := timeArg(req, "reminder_time")
		if err != nil {
			return errResult(err), nil
		}
		message, err := strArg(req, "message")
		if err != nil {
			return errResult(err), nil
		}
		in := service.AddReminderInput{ReminderTime: reminderTime, Message: message}

		if raw, ok := req.GetArguments()["recurrence_config"]; ok && raw != nil {
			m, ok := raw.(map[string]any)
			if !ok {
				return errResult(apperr.Invalid("recurrence must be an object")), nil
			}
			freq, _ := m["frequency"].(string)
			if !domain.ValidRecurrenceFrequency(freq) {
				return errResult(apperr.Invalid("recurrence.frequency must be daily, weekly, or monthly")), nil
			}
			in.Recurrence = &domain.RecurrenceConfig{Frequency: domain.RecurrenceFrequency(freq)}
		}
		if in.RelatedEntityType, in.RelatedEntityID, err = optEntityRefArgs(req, "related_entity_type", "related_entity_id"); err != nil {
			return errResult(err), nil
		}
		if tags, err := optTagsArg(req, "tags"); err != nil {
			return errResult(err), nil
		} else if tags != nil {
			in.Tags = *tags
		}

		reminder, err := s.Reminders.Add(ctx, in)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toReminderDTO(reminder)), nil
	}
}

func handleCompleteReminder(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "reminder_id"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "reminder_id")
		if err != nil {
			return errResult(err), nil
		}
		completed, next, err := s.Reminders.Complete(ctx, id)
		if err != nil {
			return errResult(err), nil
		}
		out := map[string]any{"completed": toReminderDTO(completed)}
		if next != nil {
			out["next_occurrence"] = toReminderDTO(next)
		}
		return jsonResult(out), nil
	}
}

func handleSnoozeReminder(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "reminder_id", "until"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "reminder_id")
		if err != nil {
			return errResult(err), nil
		}
		until, err := timeArg(req, "until")
		if err != nil {
			return errResult(err), nil
		}
		reminder, err := s.Reminders.Snooze(ctx, id, until)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(toReminderDTO(reminder)), nil
	}
}

func handleDeleteReminder(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "reminder_id"); err != nil {
			return errResult(err), nil
		}
		id, err := intArg(req, "reminder_id")
		if err != nil {
			return errResult(err), nil
		}
		if err := s.Reminders.Delete(ctx, id); err != nil {
			return errResult(err), nil
		}
		return jsonResult(map[string]any{"deleted": true, "reminder_id": id}), nil
	}
}

func handleGetTimecard(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "project_id", "start_date", "end_date", "include_private"); err != nil {
			return errResult(err), nil
		}
		projectID, err := intArg(req, "project_id")
		if err != nil {
			return errResult(err), nil
		}
		from, err := dateArg(req, "start_date")
		if err != nil {
			return errResult(err), nil
		}
		to, err := dateArg(req, "end_date")
		if err != nil {
			return errResult(err), nil
		}
		if to.Before(from) {
			return errResult(apperr.Invalid("end_date must not precede start_date")), nil
		}
		includePrivate := false
		if v, err := optBoolArg(req, "include_private"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			includePrivate = *v
		}
		rows, err := s.Sessions.Timecard(ctx, projectID, from, to, includePrivate)
		if err != nil {
			return errResult(err), nil
		}
		return jsonResult(map[string]any{
			"project_id": projectID,
			"entries":    toTimecardDTO(rows),
		}), nil
	}
}

func handleQuery(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "structured_query", "text", "access_mode"); err != nil {
			return errResult(err), nil
		}
		mode := query.AccessAll
		if v, err := optStrArg(req, "access_mode"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			switch query.AccessMode(*v) {
			case query.AccessAll, query.AccessInternalAndPublic, query.AccessPublicOnly:
				mode = query.AccessMode(*v)
			default:
				return errResult(apperr.Invalid("access_mode must be all, internal_and_public, or public_only")), nil
			}
		}

		structured, hasStructured := req.GetArguments()["structured_query"]
		text, err := optStrArg(req, "text")
		if err != nil {
			return errResult(err), nil
		}
		if hasStructured == (text != nil) {
			return errResult(apperr.Invalid("provide exactly one of structured_query or text")), nil
		}

		var res *service.QueryResult
		if hasStructured {
			data, err := json.Marshal(structured)
			if err != nil {
				return errResult(apperr.Invalid("structured_query is not valid JSON")), nil
			}
			var q query.Query
			decoder := json.NewDecoder(bytes.NewReader(data))
			decoder.DisallowUnknownFields()
			if err := decoder.Decode(&q); err != nil {
				return errResult(apperr.Invalid("structured_query: %v", err)), nil
			}
			res, err = s.Queries.Execute(ctx, &q, mode)
			if err != nil {
				return errResult(err), nil
			}
		} else {
			res, err = s.Queries.ExecuteLoose(ctx, *text, mode)
			if err != nil {
				return errResult(err), nil
			}
		}
		return jsonResult(toQueryResultDTO(res)), nil
	}
}

func handleTriggerNotification(s Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := rejectUnknown(req, "title", "message", "sound", "metadata"); err != nil {
			return errResult(err), nil
		}
		title, err := strArg(req, "title")
		if err != nil {
			return errResult(err), nil
		}
		message, err := strArg(req, "message")
		if err != nil {
			return errResult(err), nil
		}
		p := notify.Payload{Title: title, Message: message}
		if v, err := optStrArg(req, "sound"); err != nil {
			return errResult(err), nil
		} else if v != nil {
			p.Sound = *v
		}
		if raw, ok := req.GetArguments()["metadata"]; ok && raw != nil {
			m, ok := raw.(map[string]any)
			if !ok {
				return errResult(apperr.Invalid("metadata must be an object")), nil
			}
			p.Metadata = m
		}

		attempts, err := s.Notifier.Send(ctx, p)
		if err != nil {
			return jsonResult(map[string]any{
				"delivered": false,
				"attempts":  attempts,
				"error":     apperr.Code(err),
			}), nil
		}
		return jsonResult(map[string]any{"delivered": true, "attempts": attempts}), nil
	}
}
