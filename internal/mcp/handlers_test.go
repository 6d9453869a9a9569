package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/query"
	"github.com/jarosser06/mosaic/internal/repository"
	"github.com/jarosser06/mosaic/internal/service"
	"github.com/jarosser06/mosaic/internal/testutil"
)

func servicesSetup(t *testing.T) (Services, *sql.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)

	personRepo := repository.NewSQLitePersonRepo(db)
	clientRepo := repository.NewSQLiteClientRepo(db)
	projectRepo := repository.NewSQLiteProjectRepo(db)
	employerRepo := repository.NewSQLiteEmployerRepo(db)
	sessionRepo := repository.NewSQLiteWorkSessionRepo(db)
	meetingRepo := repository.NewSQLiteMeetingRepo(db)
	noteRepo := repository.NewSQLiteNoteRepo(db)
	reminderRepo := repository.NewSQLiteReminderRepo(db)
	employmentRepo := repository.NewSQLiteEmploymentHistoryRepo(db)
	profileRepo := repository.NewSQLiteUserProfileRepo(db)
	uow := testutil.NewTestUoW(db)
	obs := service.NoopUseCaseObserver{}

	return Services{
		Sessions:  service.NewWorkSessionService(sessionRepo, profileRepo, uow, obs),
		Meetings:  service.NewMeetingService(meetingRepo, profileRepo, uow, obs),
		Reminders: service.NewReminderService(reminderRepo, profileRepo, uow, obs),
		Entities: service.NewEntityService(personRepo, clientRepo, projectRepo, employerRepo,
			noteRepo, employmentRepo, profileRepo, obs),
		Queries: service.NewQueryService(query.NewEngine(db),
			personRepo, clientRepo, projectRepo, employerRepo,
			sessionRepo, meetingRepo, noteRepo, reminderRepo, profileRepo, obs),
	}, db
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, into any) {
	t.Helper()
	require.False(t, res.IsError, "tool returned error: %s", resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), into))
}

func TestHandleLogWorkSession(t *testing.T) {
	s, db := servicesSetup(t)
	ctx := context.Background()
	clientID := testutil.SeedClient(t, db, "Acme Corp")
	projectID := testutil.SeedProject(t, db, clientID, "Rollout")

	res, err := handleLogWorkSession(s)(ctx, callReq(map[string]any{
		"project_id": float64(projectID),
		"start_time": "2026-01-15T14:00:00Z",
		"end_time":   "2026-01-15T15:45:00Z",
		"summary":    "Schema migration",
	}))
	require.NoError(t, err)

	var dto workSessionDTO
	decodeResult(t, res, &dto)
	assert.Equal(t, "2.0", dto.DurationHours)
	assert.Equal(t, "2026-01-15", dto.Date)
	assert.Equal(t, "private", dto.PrivacyLevel)
}

func TestHandleLogWorkSession_NaiveDatetimeRejected(t *testing.T) {
	s, _ := servicesSetup(t)
	res, err := handleLogWorkSession(s)(context.Background(), callReq(map[string]any{
		"project_id": float64(1),
		"start_time": "2026-01-15T14:00:00",
		"end_time":   "2026-01-15T15:00:00",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "INVALID_ARGUMENT")
}

func TestHandleLogWorkSession_UnknownFieldRejected(t *testing.T) {
	s, _ := servicesSetup(t)
	res, err := handleLogWorkSession(s)(context.Background(), callReq(map[string]any{
		"project_id": float64(1),
		"start_time": "2026-01-15T14:00:00Z",
		"end_time":   "2026-01-15T15:00:00Z",
		"billable":   true,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown field")
}

func TestHandleLogMeeting_AutoSession(t *testing.T) {
	s, db := servicesSetup(t)
	ctx := context.Background()
	clientID := testutil.SeedClient(t, db, "Acme Corp")
	projectID := testutil.SeedProject(t, db, clientID, "Rollout")

	res, err := handleLogMeeting(s)(ctx, callReq(map[string]any{
		"title":            "Kickoff",
		"start_time":       "2026-01-15T10:00:00Z",
		"duration_minutes": float64(45),
		"project_id":       float64(projectID),
	}))
	require.NoError(t, err)

	var dto meetingDTO
	decodeResult(t, res, &dto)
	require.NotNil(t, dto.AutoWorkSessionID)

	session, err := s.Sessions.Get(ctx, *dto.AutoWorkSessionID)
	require.NoError(t, err)
	assert.Equal(t, "1.0", session.DurationHours.StringFixed(1))
}

func TestHandleLogMeeting_MissingProject(t *testing.T) {
	s, _ := servicesSetup(t)
	res, err := handleLogMeeting(s)(context.Background(), callReq(map[string]any{
		"title":            "Ghost",
		"start_time":       "2026-01-15T10:00:00Z",
		"duration_minutes": float64(45),
		"project_id":       float64(999),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "NOT_FOUND")
}

func TestHandleQuery_StructuredGroupedSum(t *testing.T) {
	s, db := servicesSetup(t)
	ctx := context.Background()
	clientID := testutil.SeedClient(t, db, "Acme Corp")
	projectID := testutil.SeedProject(t, db, clientID, "Rollout")

	for _, span := range []struct{ start, end string }{
		{"2026-01-15T09:00:00Z", "2026-01-15T10:00:00Z"},
		{"2026-01-16T09:00:00Z", "2026-01-16T10:45:00Z"},
	} {
		logRes, err := handleLogWorkSession(s)(ctx, callReq(map[string]any{
			"project_id": float64(projectID),
			"start_time": span.start,
			"end_time":   span.end,
		}))
		require.NoError(t, err)
		require.False(t, logRes.IsError)
	}

	res, err := handleQuery(s)(ctx, callReq(map[string]any{
		"structured_query": map[string]any{
			"entity_type": "work_session",
			"filters": []any{
				map[string]any{"field": "project.client.name", "operator": "eq", "value": "Acme Corp"},
			},
			"aggregation": map[string]any{
				"function": "sum",
				"field":    "duration_hours",
				"group_by": []any{"project.name"},
			},
		},
	}))
	require.NoError(t, err)

	var dto queryResultDTO
	decodeResult(t, res, &dto)
	require.NotNil(t, dto.Aggregation)
	require.Len(t, dto.Aggregation.Groups, 1)
	assert.Equal(t, []any{"Rollout"}, dto.Aggregation.Groups[0].GroupValues)
	assert.Equal(t, "3.0", dto.Aggregation.Groups[0].Result) // 1.0 + 2.0
	require.NotNil(t, dto.TotalGroups)
	assert.Equal(t, int64(1), *dto.TotalGroups)
}

func TestHandleQuery_RequiresExactlyOneForm(t *testing.T) {
	s, _ := servicesSetup(t)
	ctx := context.Background()

	res, err := handleQuery(s)(ctx, callReq(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = handleQuery(s)(ctx, callReq(map[string]any{
		"structured_query": map[string]any{"entity_type": "person"},
		"text":             "people",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleQuery_EntityResults(t *testing.T) {
	s, db := servicesSetup(t)
	ctx := context.Background()
	testutil.SeedPerson(t, db, "Alice Chen")
	testutil.SeedPerson(t, db, "Bob Okafor")

	res, err := handleQuery(s)(ctx, callReq(map[string]any{
		"structured_query": map[string]any{
			"entity_type": "person",
			"filters": []any{
				map[string]any{"field": "full_name", "operator": "contains", "value": "alice"},
			},
		},
	}))
	require.NoError(t, err)

	var dto queryResultDTO
	decodeResult(t, res, &dto)
	require.NotNil(t, dto.TotalCount)
	assert.Equal(t, int64(1), *dto.TotalCount)
	require.Len(t, dto.Results, 1)
}

func TestHandleCompleteReminder_Recurring(t *testing.T) {
	s, _ := servicesSetup(t)
	ctx := context.Background()

	addRes, err := handleAddReminder(s)(ctx, callReq(map[string]any{
		"reminder_time": "2026-01-19T09:00:00Z",
		"message":       "weekly review",
		"recurrence_config": map[string]any{"frequency": "weekly"},
	}))
	require.NoError(t, err)
	var added reminderDTO
	decodeResult(t, addRes, &added)

	res, err := handleCompleteReminder(s)(ctx, callReq(map[string]any{
		"reminder_id": float64(added.ID),
	}))
	require.NoError(t, err)

	var out struct {
		Completed      reminderDTO  `json:"completed"`
		NextOccurrence *reminderDTO `json:"next_occurrence"`
	}
	decodeResult(t, res, &out)
	assert.True(t, out.Completed.IsCompleted)
	require.NotNil(t, out.NextOccurrence)
	assert.Equal(t, "2026-01-26T09:00:00Z", out.NextOccurrence.ReminderTime)
}

func TestHandleGetTimecard(t *testing.T) {
	s, db := servicesSetup(t)
	ctx := context.Background()
	clientID := testutil.SeedClient(t, db, "Acme Corp")
	projectID := testutil.SeedProject(t, db, clientID, "Rollout")

	logRes, err := handleLogWorkSession(s)(ctx, callReq(map[string]any{
		"project_id":    float64(projectID),
		"start_time":    "2026-01-15T14:00:00Z",
		"end_time":      "2026-01-15T15:45:00Z",
		"summary":       "Schema migration",
		"privacy_level": "public",
	}))
	require.NoError(t, err)
	require.False(t, logRes.IsError)

	res, err := handleGetTimecard(s)(ctx, callReq(map[string]any{
		"project_id": float64(projectID),
		"start_date": "2026-01-01",
		"end_date":   "2026-01-31",
	}))
	require.NoError(t, err)

	var out struct {
		ProjectID int64            `json:"project_id"`
		Entries   []timecardRowDTO `json:"entries"`
	}
	decodeResult(t, res, &out)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "2026-01-15", out.Entries[0].Date)
	assert.Equal(t, "2.0", out.Entries[0].Hours)
	assert.Equal(t, "Schema migration", out.Entries[0].Summary)
}
