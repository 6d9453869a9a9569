package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
)

// SQLiteMeetingRepo implements MeetingRepo using a SQLite database.
// Attendees live in a join table and cascade with the meeting.
type SQLiteMeetingRepo struct {
	db db.DBTX
}

// NewSQLiteMeetingRepo creates a new SQLiteMeetingRepo.
func NewSQLiteMeetingRepo(db db.DBTX) *SQLiteMeetingRepo {
	return &SQLiteMeetingRepo{db: db}
}

func (r *SQLiteMeetingRepo) Create(ctx context.Context, m *domain.Meeting) error {
	if m.Title == "" {
		return apperr.Invalid("meeting title must not be empty")
	}
	if m.DurationMinutes <= 0 {
		return apperr.Invalid("duration_minutes must be positive")
	}
	now := nowUTC()
	m.CreatedAt, m.UpdatedAt = now, now

	query := `INSERT INTO meetings (title, start_time, duration_minutes, summary, privacy_level,
		project_id, meeting_type, location, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		m.Title, m.StartTime.UTC().Format(time.RFC3339), m.DurationMinutes,
		m.Summary, string(m.PrivacyLevel), nullableInt64(m.ProjectID),
		m.MeetingType, m.Location, tagsToJSON(m.Tags),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting meeting: %w", translateConstraint(err))
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading meeting id: %w", err)
	}

	if len(m.AttendeeIDs) > 0 {
		if err := r.insertAttendees(ctx, m.ID, m.AttendeeIDs); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteMeetingRepo) insertAttendees(ctx context.Context, meetingID int64, personIDs []int64) error {
	for _, pid := range personIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO meeting_attendees (meeting_id, person_id) VALUES (?, ?)`,
			meetingID, pid)
		if err != nil {
			return fmt.Errorf("inserting meeting attendee %d: %w", pid, translateConstraint(err))
		}
	}
	return nil
}

func (r *SQLiteMeetingRepo) GetByID(ctx context.Context, id int64) (*domain.Meeting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, start_time, duration_minutes, summary, privacy_level,
			project_id, meeting_type, location, tags, created_at, updated_at
		 FROM meetings WHERE id = ?`, id)

	var m domain.Meeting
	var startStr, privacyStr, tagsStr, createdStr, updatedStr string
	var projectID sql.NullInt64

	err := row.Scan(&m.ID, &m.Title, &startStr, &m.DurationMinutes, &m.Summary,
		&privacyStr, &projectID, &m.MeetingType, &m.Location, &tagsStr,
		&createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("meeting %d", id)
		}
		return nil, fmt.Errorf("scanning meeting: %w", err)
	}
	if projectID.Valid {
		m.ProjectID = &projectID.Int64
	}
	m.PrivacyLevel = domain.PrivacyLevel(privacyStr)
	m.Tags = tagsFromJSON(tagsStr)
	if m.StartTime, err = time.Parse(time.RFC3339, startStr); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	if m.AttendeeIDs, err = r.listAttendees(ctx, m.ID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteMeetingRepo) listAttendees(ctx context.Context, meetingID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT person_id FROM meeting_attendees WHERE meeting_id = ? ORDER BY person_id`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("listing meeting attendees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning attendee: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendees: %w", err)
	}
	return ids, nil
}

func (r *SQLiteMeetingRepo) Update(ctx context.Context, m *domain.Meeting) error {
	if m.Title == "" {
		return apperr.Invalid("meeting title must not be empty")
	}
	if m.DurationMinutes <= 0 {
		return apperr.Invalid("duration_minutes must be positive")
	}
	m.UpdatedAt = nowUTC()

	query := `UPDATE meetings SET title = ?, start_time = ?, duration_minutes = ?, summary = ?,
		privacy_level = ?, project_id = ?, meeting_type = ?, location = ?, tags = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		m.Title, m.StartTime.UTC().Format(time.RFC3339), m.DurationMinutes, m.Summary,
		string(m.PrivacyLevel), nullableInt64(m.ProjectID), m.MeetingType, m.Location,
		tagsToJSON(m.Tags), m.UpdatedAt.Format(time.RFC3339), m.ID)
	if err != nil {
		return fmt.Errorf("updating meeting: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking meeting update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("meeting %d", m.ID)
	}
	return nil
}

func (r *SQLiteMeetingRepo) ReplaceAttendees(ctx context.Context, meetingID int64, personIDs []int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM meeting_attendees WHERE meeting_id = ?`, meetingID); err != nil {
		return fmt.Errorf("clearing meeting attendees: %w", err)
	}
	return r.insertAttendees(ctx, meetingID, personIDs)
}

func (r *SQLiteMeetingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking meeting delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("meeting %d", id)
	}
	return nil
}
