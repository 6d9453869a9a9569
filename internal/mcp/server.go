// Package mcp is the tool façade: it exposes the service layer as typed
// MCP tools over stdio. Handlers validate input shape, delegate to one
// service, and serialize a typed output record; unknown fields and naive
// datetimes are rejected before any service runs.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverInstructions = `Mosaic is a personal work-memory and time-tracking server. ` +
	`Use the log_* tools to record work sessions and meetings (durations round to the half hour), ` +
	`the add_*/update_* tools to maintain people, clients, projects, employers, notes, and reminders, ` +
	`the query tool for structured or phrase queries over any entity, ` +
	`get_timecard for per-day project hour summaries, and trigger_notification for desktop alerts. ` +
	`All datetimes must be ISO-8601 with an explicit offset.`

// NewServer builds the MCP server with every tool registered.
func NewServer(s Services) *server.MCPServer {
	srv := server.NewMCPServer(
		"mosaic",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)
	registerTools(srv, s)
	return srv
}

func registerTools(srv *server.MCPServer, s Services) {
	srv.AddTool(
		mcp.NewTool("log_work_session",
			mcp.WithDescription("Log a block of work on a project. Duration is computed from the interval and rounded to the half hour; the date is the local date of the start time."),
			mcp.WithNumber("project_id", mcp.Required(), mcp.Description("Project the work belongs to")),
			mcp.WithString("start_time", mcp.Required(), mcp.Description("ISO-8601 datetime with offset")),
			mcp.WithString("end_time", mcp.Required(), mcp.Description("ISO-8601 datetime with offset; must be after start_time")),
			mcp.WithString("summary", mcp.Description("What the session covered")),
			mcp.WithString("privacy_level", mcp.Description("public, internal, or private (default: user setting)")),
			mcp.WithArray("tags", mcp.Description("Tags to attach")),
		),
		handleLogWorkSession(s),
	)

	srv.AddTool(
		mcp.NewTool("log_meeting",
			mcp.WithDescription("Log a meeting. When project_id is set, a matching work session is created atomically alongside the meeting and returned as auto_work_session_id."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Meeting title")),
			mcp.WithString("start_time", mcp.Required(), mcp.Description("ISO-8601 datetime with offset")),
			mcp.WithNumber("duration_minutes", mcp.Required(), mcp.Description("Positive meeting length in minutes")),
			mcp.WithString("summary", mcp.Description("Meeting notes")),
			mcp.WithString("privacy_level", mcp.Description("public, internal, or private")),
			mcp.WithNumber("project_id", mcp.Description("Project to bill the meeting to")),
			mcp.WithString("meeting_type", mcp.Description("Free-form type, e.g. standup, 1:1")),
			mcp.WithString("location", mcp.Description("Where the meeting happened")),
			mcp.WithArray("tags", mcp.Description("Tags to attach")),
			mcp.WithArray("attendee_ids", mcp.Description("Person ids attending")),
		),
		handleLogMeeting(s),
	)

	srv.AddTool(
		mcp.NewTool("update_work_session",
			mcp.WithDescription("Partially update a work session. Changing start or end time recomputes the rounded duration and date in the same commit."),
			mcp.WithNumber("work_session_id", mcp.Required()),
			mcp.WithNumber("project_id"),
			mcp.WithString("start_time", mcp.Description("ISO-8601 datetime with offset")),
			mcp.WithString("end_time", mcp.Description("ISO-8601 datetime with offset")),
			mcp.WithString("summary"),
			mcp.WithString("privacy_level"),
			mcp.WithArray("tags"),
		),
		handleUpdateWorkSession(s),
	)

	srv.AddTool(
		mcp.NewTool("update_meeting",
			mcp.WithDescription("Partially update a meeting. The auto-generated work session, if any, is left untouched."),
			mcp.WithNumber("meeting_id", mcp.Required()),
			mcp.WithString("title"),
			mcp.WithString("start_time", mcp.Description("ISO-8601 datetime with offset")),
			mcp.WithNumber("duration_minutes"),
			mcp.WithString("summary"),
			mcp.WithString("privacy_level"),
			mcp.WithNumber("project_id", mcp.Description("New project id, or null to detach")),
			mcp.WithString("meeting_type"),
			mcp.WithString("location"),
			mcp.WithArray("tags"),
			mcp.WithArray("attendee_ids", mcp.Description("Replaces the attendee list")),
		),
		handleUpdateMeeting(s),
	)

	srv.AddTool(
		mcp.NewTool("add_person",
			mcp.WithDescription("Add a person to the directory."),
			mcp.WithString("full_name", mcp.Required()),
			mcp.WithString("email"),
			mcp.WithString("phone"),
			mcp.WithString("linkedin_url"),
			mcp.WithString("company"),
			mcp.WithString("title"),
			mcp.WithString("notes"),
			mcp.WithObject("additional_info", mcp.Description("Free-form string key/value pairs")),
			mcp.WithBoolean("is_stakeholder"),
			mcp.WithArray("tags"),
		),
		handleAddPerson(s),
	)

	srv.AddTool(
		mcp.NewTool("update_person",
			mcp.WithDescription("Partially update a person."),
			mcp.WithNumber("person_id", mcp.Required()),
			mcp.WithString("full_name"),
			mcp.WithString("email"),
			mcp.WithString("phone"),
			mcp.WithString("linkedin_url"),
			mcp.WithString("company"),
			mcp.WithString("title"),
			mcp.WithString("notes"),
			mcp.WithObject("additional_info"),
			mcp.WithBoolean("is_stakeholder"),
			mcp.WithArray("tags"),
		),
		handleUpdatePerson(s),
	)

	srv.AddTool(
		mcp.NewTool("add_client",
			mcp.WithDescription("Add a client (company or individual)."),
			mcp.WithString("name", mcp.Required()),
			mcp.WithString("type", mcp.Description("company or individual (default company)")),
			mcp.WithString("status", mcp.Description("active or past (default active)")),
			mcp.WithNumber("contact_person_id", mcp.Description("Existing person id")),
			mcp.WithString("notes"),
			mcp.WithArray("tags"),
		),
		handleAddClient(s),
	)

	srv.AddTool(
		mcp.NewTool("update_client",
			mcp.WithDescription("Partially update a client."),
			mcp.WithNumber("client_id", mcp.Required()),
			mcp.WithString("name"),
			mcp.WithString("type"),
			mcp.WithString("status"),
			mcp.WithNumber("contact_person_id"),
			mcp.WithString("notes"),
			mcp.WithArray("tags"),
		),
		handleUpdateClient(s),
	)

	srv.AddTool(
		mcp.NewTool("add_project",
			mcp.WithDescription("Add a project under a client. A completed project requires an end_date."),
			mcp.WithString("name", mcp.Required()),
			mcp.WithNumber("client_id", mcp.Required()),
			mcp.WithNumber("on_behalf_of_id", mcp.Description("Employer the work is done on behalf of")),
			mcp.WithString("description"),
			mcp.WithString("status", mcp.Description("active, paused, or completed (default active)")),
			mcp.WithString("start_date", mcp.Description("YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Description("YYYY-MM-DD")),
			mcp.WithArray("tags"),
		),
		handleAddProject(s),
	)

	srv.AddTool(
		mcp.NewTool("update_project",
			mcp.WithDescription("Partially update a project."),
			mcp.WithNumber("project_id", mcp.Required()),
			mcp.WithString("name"),
			mcp.WithNumber("client_id"),
			mcp.WithNumber("on_behalf_of_id"),
			mcp.WithString("description"),
			mcp.WithString("status"),
			mcp.WithString("start_date", mcp.Description("YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Description("YYYY-MM-DD")),
			mcp.WithArray("tags"),
		),
		handleUpdateProject(s),
	)

	srv.AddTool(
		mcp.NewTool("add_employer",
			mcp.WithDescription("Add an employer (who projects can be worked on behalf of)."),
			mcp.WithString("name", mcp.Required()),
			mcp.WithString("notes"),
			mcp.WithArray("tags"),
		),
		handleAddEmployer(s),
	)

	srv.AddTool(
		mcp.NewTool("add_employment_history",
			mcp.WithDescription("Record a person's role at a client. A row without an end_date is the current role; at most one may be current per person and client."),
			mcp.WithNumber("person_id", mcp.Required()),
			mcp.WithNumber("client_id", mcp.Required()),
			mcp.WithString("role"),
			mcp.WithString("start_date", mcp.Description("YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Description("YYYY-MM-DD; omit for the current role")),
		),
		handleAddEmploymentHistory(s),
	)

	srv.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Add a note, optionally attached to one entity. entity_type and entity_id must be provided together."),
			mcp.WithString("text", mcp.Required()),
			mcp.WithString("privacy_level"),
			mcp.WithString("entity_type", mcp.Description("person, client, project, employer, work_session, meeting, or reminder")),
			mcp.WithNumber("entity_id"),
			mcp.WithArray("tags"),
		),
		handleAddNote(s),
	)

	srv.AddTool(
		mcp.NewTool("update_note",
			mcp.WithDescription("Partially update a note."),
			mcp.WithNumber("note_id", mcp.Required()),
			mcp.WithString("text"),
			mcp.WithString("privacy_level"),
			mcp.WithString("entity_type"),
			mcp.WithNumber("entity_id"),
			mcp.WithArray("tags"),
		),
		handleUpdateNote(s),
	)

	srv.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note."),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithNumber("note_id", mcp.Required()),
		),
		handleDeleteNote(s),
	)

	srv.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder, optionally recurring and optionally attached to an entity."),
			mcp.WithString("reminder_time", mcp.Required(), mcp.Description("ISO-8601 datetime with offset")),
			mcp.WithString("message", mcp.Required()),
			mcp.WithObject("recurrence_config", mcp.Description(`{"frequency": "daily"|"weekly"|"monthly"}`)),
			mcp.WithString("related_entity_type"),
			mcp.WithNumber("related_entity_id"),
			mcp.WithArray("tags"),
		),
		handleAddReminder(s),
	)

	srv.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder done. A recurring reminder atomically produces its next occurrence, returned as next_occurrence."),
			mcp.WithNumber("reminder_id", mcp.Required()),
		),
		handleCompleteReminder(s),
	)

	srv.AddTool(
		mcp.NewTool("snooze_reminder",
			mcp.WithDescription("Snooze a reminder until the given instant without changing its reminder_time or recurrence."),
			mcp.WithNumber("reminder_id", mcp.Required()),
			mcp.WithString("until", mcp.Required(), mcp.Description("ISO-8601 datetime with offset")),
		),
		handleSnoozeReminder(s),
	)

	srv.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder."),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithNumber("reminder_id", mcp.Required()),
		),
		handleDeleteReminder(s),
	)

	srv.AddTool(
		mcp.NewTool("get_timecard",
			mcp.WithDescription("Per-day hour totals for a project over an inclusive date range. Without include_private, private sessions are omitted and internal summaries are genericized."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("project_id", mcp.Required()),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
			mcp.WithBoolean("include_private", mcp.Description("Include private sessions and real internal summaries")),
		),
		handleGetTimecard(s),
	)

	srv.AddTool(
		mcp.NewTool("query",
			mcp.WithDescription(`Query any entity. Provide either structured_query (a typed query object) or text (a simple phrase like "sessions this week").

structured_query shape:
  entity_type: work_session | meeting | person | client | project | employer | note | reminder
  filters: [{field, operator, value}] — field may traverse relationships with dots (project.client.name);
    operators: eq ne gt gte lt lte in not_in contains starts_with ends_with is_null is_not_null has_tag has_any_tag;
    date/datetime values accept shortcuts: today, this_week, this_month, this_year, now
  aggregation: {function: count|sum|avg|min|max|count_distinct, field?, group_by?: [path]}
  order_by: [{field, direction}]; limit (max 1000); offset`),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithObject("structured_query"),
			mcp.WithString("text"),
			mcp.WithString("access_mode", mcp.Description("all, internal_and_public, or public_only (default all)")),
		),
		handleQuery(s),
	)

	srv.AddTool(
		mcp.NewTool("trigger_notification",
			mcp.WithDescription("Send a desktop notification through the bridge. Retries transient failures with exponential backoff."),
			mcp.WithString("title", mcp.Required()),
			mcp.WithString("message", mcp.Required()),
			mcp.WithString("sound"),
			mcp.WithObject("metadata"),
		),
		handleTriggerNotification(s),
	)
}
