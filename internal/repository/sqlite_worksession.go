package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/rounding"
)

// SQLiteWorkSessionRepo implements WorkSessionRepo using a SQLite database.
// Durations are stored as integer tenths of an hour so sums stay exact.
type SQLiteWorkSessionRepo struct {
	db db.DBTX
}

// NewSQLiteWorkSessionRepo creates a new SQLiteWorkSessionRepo.
func NewSQLiteWorkSessionRepo(db db.DBTX) *SQLiteWorkSessionRepo {
	return &SQLiteWorkSessionRepo{db: db}
}

const workSessionColumns = `id, project_id, date, start_time, end_time,
	duration_tenths, summary, privacy_level, tags, created_at, updated_at`

func (r *SQLiteWorkSessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	if !s.EndTime.After(s.StartTime) {
		return apperr.Invalid("end_time must be after start_time")
	}
	now := nowUTC()
	s.CreatedAt, s.UpdatedAt = now, now

	query := `INSERT INTO work_sessions (project_id, date, start_time, end_time,
		duration_tenths, summary, privacy_level, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		s.ProjectID,
		s.Date.Format(dateLayout),
		s.StartTime.UTC().Format(time.RFC3339),
		s.EndTime.UTC().Format(time.RFC3339),
		rounding.ToTenths(s.DurationHours),
		s.Summary, string(s.PrivacyLevel), tagsToJSON(s.Tags),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting work session: %w", translateConstraint(err))
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading work session id: %w", err)
	}
	return nil
}

func (r *SQLiteWorkSessionRepo) GetByID(ctx context.Context, id int64) (*domain.WorkSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workSessionColumns+` FROM work_sessions WHERE id = ?`, id)
	s, err := scanWorkSession(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("work session %d", id)
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLiteWorkSessionRepo) ListByProjectDateRange(ctx context.Context, projectID int64, from, to time.Time) ([]*domain.WorkSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workSessionColumns+` FROM work_sessions
		 WHERE project_id = ? AND date >= ? AND date <= ?
		 ORDER BY start_time`,
		projectID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing work sessions: %w", err)
	}
	defer rows.Close()

	var out []*domain.WorkSession
	for rows.Next() {
		s, err := scanWorkSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work sessions: %w", err)
	}
	return out, nil
}

func scanWorkSession(scan func(dest ...any) error) (*domain.WorkSession, error) {
	var s domain.WorkSession
	var dateStr, startStr, endStr, privacyStr, tagsStr, createdStr, updatedStr string
	var tenths int64

	err := scan(&s.ID, &s.ProjectID, &dateStr, &startStr, &endStr,
		&tenths, &s.Summary, &privacyStr, &tagsStr, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}
	s.DurationHours = rounding.FromTenths(tenths)
	s.PrivacyLevel = domain.PrivacyLevel(privacyStr)
	s.Tags = tagsFromJSON(tagsStr)
	if s.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	if s.StartTime, err = time.Parse(time.RFC3339, startStr); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if s.EndTime, err = time.Parse(time.RFC3339, endStr); err != nil {
		return nil, fmt.Errorf("parsing end_time: %w", err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

func (r *SQLiteWorkSessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	if !s.EndTime.After(s.StartTime) {
		return apperr.Invalid("end_time must be after start_time")
	}
	s.UpdatedAt = nowUTC()

	query := `UPDATE work_sessions SET project_id = ?, date = ?, start_time = ?, end_time = ?,
		duration_tenths = ?, summary = ?, privacy_level = ?, tags = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.ProjectID,
		s.Date.Format(dateLayout),
		s.StartTime.UTC().Format(time.RFC3339),
		s.EndTime.UTC().Format(time.RFC3339),
		rounding.ToTenths(s.DurationHours),
		s.Summary, string(s.PrivacyLevel), tagsToJSON(s.Tags),
		s.UpdatedAt.Format(time.RFC3339), s.ID)
	if err != nil {
		return fmt.Errorf("updating work session: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking work session update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("work session %d", s.ID)
	}
	return nil
}

func (r *SQLiteWorkSessionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting work session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking work session delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("work session %d", id)
	}
	return nil
}
