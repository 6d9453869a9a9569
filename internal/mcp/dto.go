package mcp

import (
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"

	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/service"
)

// DTOs are the wire shapes of tool outputs. Datetimes serialize as RFC3339
// with offset, dates as YYYY-MM-DD, decimals as strings preserving one
// decimal place.

type workSessionDTO struct {
	ID            int64    `json:"id"`
	ProjectID     int64    `json:"project_id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	DurationHours string   `json:"duration_hours"`
	Summary       string   `json:"summary"`
	PrivacyLevel  string   `json:"privacy_level"`
	Tags          []string `json:"tags"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func toWorkSessionDTO(s *domain.WorkSession) workSessionDTO {
	return workSessionDTO{
		ID:            s.ID,
		ProjectID:     s.ProjectID,
		Date:          s.Date.Format("2006-01-02"),
		StartTime:     s.StartTime.UTC().Format(time.RFC3339),
		EndTime:       s.EndTime.UTC().Format(time.RFC3339),
		DurationHours: s.DurationHours.StringFixed(1),
		Summary:       s.Summary,
		PrivacyLevel:  string(s.PrivacyLevel),
		Tags:          emptyTags(s.Tags),
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type meetingDTO struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	StartTime         string   `json:"start_time"`
	DurationMinutes   int      `json:"duration_minutes"`
	Summary           string   `json:"summary"`
	PrivacyLevel      string   `json:"privacy_level"`
	ProjectID         *int64   `json:"project_id"`
	MeetingType       string   `json:"meeting_type"`
	Location          string   `json:"location"`
	AttendeeIDs       []int64  `json:"attendee_ids"`
	Tags              []string `json:"tags"`
	AutoWorkSessionID *int64   `json:"auto_work_session_id,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func toMeetingDTO(m *domain.Meeting, autoSessionID *int64) meetingDTO {
	attendees := m.AttendeeIDs
	if attendees == nil {
		attendees = []int64{}
	}
	return meetingDTO{
		ID:                m.ID,
		Title:             m.Title,
		StartTime:         m.StartTime.UTC().Format(time.RFC3339),
		DurationMinutes:   m.DurationMinutes,
		Summary:           m.Summary,
		PrivacyLevel:      string(m.PrivacyLevel),
		ProjectID:         m.ProjectID,
		MeetingType:       m.MeetingType,
		Location:          m.Location,
		AttendeeIDs:       attendees,
		Tags:              emptyTags(m.Tags),
		AutoWorkSessionID: autoSessionID,
		CreatedAt:         m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type personDTO struct {
	ID             int64             `json:"id"`
	FullName       string            `json:"full_name"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	LinkedinURL    string            `json:"linkedin_url,omitempty"`
	Company        string            `json:"company,omitempty"`
	Title          string            `json:"title,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	AdditionalInfo map[string]string `json:"additional_info,omitempty"`
	IsStakeholder  bool              `json:"is_stakeholder"`
	Tags           []string          `json:"tags"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

func toPersonDTO(p *domain.Person) personDTO {
	return personDTO{
		ID:             p.ID,
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		LinkedinURL:    p.LinkedinURL,
		Company:        p.Company,
		Title:          p.Title,
		Notes:          p.Notes,
		AdditionalInfo: p.AdditionalInfo,
		IsStakeholder:  p.IsStakeholder,
		Tags:           emptyTags(p.Tags),
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type clientDTO struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	ContactPersonID *int64   `json:"contact_person_id"`
	Notes           string   `json:"notes,omitempty"`
	Tags            []string `json:"tags"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func toClientDTO(c *domain.Client) clientDTO {
	return clientDTO{
		ID:              c.ID,
		Name:            c.Name,
		Type:            string(c.Type),
		Status:          string(c.Status),
		ContactPersonID: c.ContactPersonID,
		Notes:           c.Notes,
		Tags:            emptyTags(c.Tags),
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type projectDTO struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	ClientID     int64    `json:"client_id"`
	OnBehalfOfID *int64   `json:"on_behalf_of_id"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Tags         []string `json:"tags"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toProjectDTO(p *domain.Project) projectDTO {
	return projectDTO{
		ID:           p.ID,
		Name:         p.Name,
		ClientID:     p.ClientID,
		OnBehalfOfID: p.OnBehalfOfID,
		Description:  p.Description,
		Status:       string(p.Status),
		StartDate:    dateStr(p.StartDate),
		EndDate:      dateStr(p.EndDate),
		Tags:         emptyTags(p.Tags),
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type employerDTO struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Notes     string   `json:"notes,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toEmployerDTO(e *domain.Employer) employerDTO {
	return employerDTO{
		ID:        e.ID,
		Name:      e.Name,
		Notes:     e.Notes,
		Tags:      emptyTags(e.Tags),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type employmentHistoryDTO struct {
	ID        int64   `json:"id"`
	PersonID  int64   `json:"person_id"`
	ClientID  int64   `json:"client_id"`
	Role      string  `json:"role"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toEmploymentHistoryDTO(h *domain.EmploymentHistory) employmentHistoryDTO {
	return employmentHistoryDTO{
		ID:        h.ID,
		PersonID:  h.PersonID,
		ClientID:  h.ClientID,
		Role:      h.Role,
		StartDate: dateStr(h.StartDate),
		EndDate:   dateStr(h.EndDate),
		CreatedAt: h.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: h.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type noteDTO struct {
	ID           int64    `json:"id"`
	Text         string   `json:"text"`
	PrivacyLevel string   `json:"privacy_level"`
	EntityType   *string  `json:"entity_type"`
	EntityID     *int64   `json:"entity_id"`
	Tags         []string `json:"tags"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toNoteDTO(n *domain.Note) noteDTO {
	var entityType *string
	if n.EntityType != nil {
		s := string(*n.EntityType)
		entityType = &s
	}
	return noteDTO{
		ID:           n.ID,
		Text:         n.Text,
		PrivacyLevel: string(n.PrivacyLevel),
		EntityType:   entityType,
		EntityID:     n.EntityID,
		Tags:         emptyTags(n.Tags),
		CreatedAt:    n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type reminderDTO struct {
	ID                int64                    `json:"id"`
	ReminderTime      string                   `json:"reminder_time"`
	Message           string                   `json:"message"`
	IsCompleted       bool                     `json:"is_completed"`
	Recurrence        *domain.RecurrenceConfig `json:"recurrence_config"`
	RelatedEntityType *string                  `json:"related_entity_type"`
	RelatedEntityID   *int64                   `json:"related_entity_id"`
	SnoozedUntil      *string                  `json:"snoozed_until"`
	Tags              []string                 `json:"tags"`
	CreatedAt         string                   `json:"created_at"`
	UpdatedAt         string                   `json:"updated_at"`
}

func toReminderDTO(r *domain.Reminder) reminderDTO {
	var entityType *string
	if r.RelatedEntityType != nil {
		s := string(*r.RelatedEntityType)
		entityType = &s
	}
	return reminderDTO{
		ID:                r.ID,
		ReminderTime:      r.ReminderTime.UTC().Format(time.RFC3339),
		Message:           r.Message,
		IsCompleted:       r.IsCompleted,
		Recurrence:        r.Recurrence,
		RelatedEntityType: entityType,
		RelatedEntityID:   r.RelatedEntityID,
		SnoozedUntil:      timeStr(r.SnoozedUntil),
		Tags:              emptyTags(r.Tags),
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type timecardRowDTO struct {
	Date    string `json:"date"`
	Hours   string `json:"hours"`
	Summary string `json:"summary"`
}

func toTimecardDTO(rows []service.TimecardRow) []timecardRowDTO {
	out := make([]timecardRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, timecardRowDTO{
			Date:    r.Date.Format("2006-01-02"),
			Hours:   r.Hours.StringFixed(1),
			Summary: r.Summary,
		})
	}
	return out
}

// Query result shapes.

type aggregationDTO struct {
	Function string     `json:"function"`
	Field    string     `json:"field,omitempty"`
	Result   any        `json:"result,omitempty"`
	Groups   []groupDTO `json:"groups,omitempty"`
}

type groupDTO struct {
	GroupValues []any `json:"group_values"`
	Result      any   `json:"result"`
}

type queryResultDTO struct {
	EntityType  string          `json:"entity_type"`
	Results     []any           `json:"results,omitempty"`
	TotalCount  *int64          `json:"total_count,omitempty"`
	Aggregation *aggregationDTO `json:"aggregation,omitempty"`
	TotalGroups *int64          `json:"total_groups,omitempty"`
}

func toQueryResultDTO(res *service.QueryResult) queryResultDTO {
	out := queryResultDTO{EntityType: res.EntityType}

	if res.Agg == nil {
		results := make([]any, 0, len(res.Entities))
		for _, e := range res.Entities {
			results = append(results, entityToDTO(e))
		}
		out.Results = results
		total := res.TotalCount
		out.TotalCount = &total
		return out
	}

	agg := &aggregationDTO{
		Function: string(res.Agg.Function),
		Field:    res.Agg.Field,
	}
	if res.Agg.Grouped {
		agg.Groups = make([]groupDTO, 0, len(res.Agg.Groups))
		for _, g := range res.Agg.Groups {
			values := make([]any, len(g.Values))
			for i, v := range g.Values {
				values[i] = renderAggValue(v)
			}
			agg.Groups = append(agg.Groups, groupDTO{
				GroupValues: values,
				Result:      renderAggValue(g.Result),
			})
		}
		n := res.Agg.TotalGroups
		out.TotalGroups = &n
	} else {
		agg.Result = renderAggValue(res.Agg.Scalar)
	}
	out.Aggregation = agg
	return out
}

func entityToDTO(e any) any {
	switch v := e.(type) {
	case *domain.WorkSession:
		return toWorkSessionDTO(v)
	case *domain.Meeting:
		return toMeetingDTO(v, nil)
	case *domain.Person:
		return toPersonDTO(v)
	case *domain.Client:
		return toClientDTO(v)
	case *domain.Project:
		return toProjectDTO(v)
	case *domain.Employer:
		return toEmployerDTO(v)
	case *domain.Note:
		return toNoteDTO(v)
	case *domain.Reminder:
		return toReminderDTO(v)
	}
	return e
}

// renderAggValue serializes aggregation cells: decimals as 1dp strings,
// everything else as-is.
func renderAggValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.StringFixed(1)
	}
	return v
}

func emptyTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func dateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func timeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// jsonResult marshals a DTO as the tool's text payload.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("INTERNAL: encoding result: " + err.Error())
	}
	return mcp.NewToolResultText(string(data))
}
