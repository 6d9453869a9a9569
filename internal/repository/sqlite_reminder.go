package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
)

// SQLiteReminderRepo implements ReminderRepo using a SQLite database.
type SQLiteReminderRepo struct {
	db db.DBTX
}

// NewSQLiteReminderRepo creates a new SQLiteReminderRepo.
func NewSQLiteReminderRepo(db db.DBTX) *SQLiteReminderRepo {
	return &SQLiteReminderRepo{db: db}
}

const reminderColumns = `id, reminder_time, message, is_completed, recurrence_config,
	related_entity_type, related_entity_id, snoozed_until, dispatched_at, tags,
	created_at, updated_at`

func validateReminder(rem *domain.Reminder) error {
	if rem.Message == "" {
		return apperr.Invalid("reminder message must not be empty")
	}
	if (rem.RelatedEntityType == nil) != (rem.RelatedEntityID == nil) {
		return apperr.Invalid("related_entity_type and related_entity_id must both be set or both be null")
	}
	if rem.RelatedEntityType != nil && !domain.ValidEntityType(string(*rem.RelatedEntityType)) {
		return apperr.Invalid("unknown related_entity_type %q", *rem.RelatedEntityType)
	}
	if rem.Recurrence != nil && !domain.ValidRecurrenceFrequency(string(rem.Recurrence.Frequency)) {
		return apperr.Invalid("unknown recurrence frequency %q", rem.Recurrence.Frequency)
	}
	return nil
}

func recurrenceToJSON(c *domain.RecurrenceConfig) interface{} {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	return string(data)
}

func recurrenceFromJSON(s sql.NullString) *domain.RecurrenceConfig {
	if !s.Valid || s.String == "" {
		return nil
	}
	var c domain.RecurrenceConfig
	if err := json.Unmarshal([]byte(s.String), &c); err != nil {
		return nil
	}
	return &c
}

func (r *SQLiteReminderRepo) Create(ctx context.Context, rem *domain.Reminder) error {
	if err := validateReminder(rem); err != nil {
		return err
	}
	now := nowUTC()
	rem.CreatedAt, rem.UpdatedAt = now, now

	var entityType *string
	if rem.RelatedEntityType != nil {
		s := string(*rem.RelatedEntityType)
		entityType = &s
	}

	query := `INSERT INTO reminders (reminder_time, message, is_completed, recurrence_config,
		related_entity_type, related_entity_id, snoozed_until, dispatched_at, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		rem.ReminderTime.UTC().Format(time.RFC3339), rem.Message, boolToInt(rem.IsCompleted),
		recurrenceToJSON(rem.Recurrence), nullableString(entityType), nullableInt64(rem.RelatedEntityID),
		nullableTimeToString(rem.SnoozedUntil, time.RFC3339),
		nullableTimeToString(rem.DispatchedAt, time.RFC3339),
		tagsToJSON(rem.Tags), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting reminder: %w", translateConstraint(err))
	}
	rem.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading reminder id: %w", err)
	}
	return nil
}

func (r *SQLiteReminderRepo) GetByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	rem, err := scanReminder(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("reminder %d", id)
		}
		return nil, err
	}
	return rem, nil
}

// ListDue implements the due predicate from the scheduler's point of view:
// not completed, due, not snoozed into the future, and not already
// dispatched for the current reminder_time.
func (r *SQLiteReminderRepo) ListDue(ctx context.Context, now time.Time) ([]*domain.Reminder, error) {
	nowStr := now.UTC().Format(time.RFC3339)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE is_completed = 0
		   AND reminder_time <= ?
		   AND (snoozed_until IS NULL OR snoozed_until <= ?)
		   AND (dispatched_at IS NULL OR dispatched_at < reminder_time)
		 ORDER BY reminder_time`, nowStr, nowStr)
	if err != nil {
		return nil, fmt.Errorf("listing due reminders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due reminders: %w", err)
	}
	return out, nil
}

func scanReminder(scan func(dest ...any) error) (*domain.Reminder, error) {
	var rem domain.Reminder
	var timeStr, tagsStr, createdStr, updatedStr string
	var completed int
	var recurStr, entityType, snoozedStr, dispatchedStr sql.NullString
	var entityID sql.NullInt64

	err := scan(&rem.ID, &timeStr, &rem.Message, &completed, &recurStr,
		&entityType, &entityID, &snoozedStr, &dispatchedStr, &tagsStr,
		&createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}
	rem.IsCompleted = intToBool(completed)
	rem.Recurrence = recurrenceFromJSON(recurStr)
	if entityType.Valid {
		et := domain.EntityType(entityType.String)
		rem.RelatedEntityType = &et
	}
	if entityID.Valid {
		rem.RelatedEntityID = &entityID.Int64
	}
	rem.SnoozedUntil = parseNullableTime(snoozedStr, time.RFC3339)
	rem.DispatchedAt = parseNullableTime(dispatchedStr, time.RFC3339)
	rem.Tags = tagsFromJSON(tagsStr)
	if rem.ReminderTime, err = time.Parse(time.RFC3339, timeStr); err != nil {
		return nil, fmt.Errorf("parsing reminder_time: %w", err)
	}
	if rem.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rem.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rem, nil
}

func (r *SQLiteReminderRepo) MarkDispatched(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET dispatched_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), nowUTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("marking reminder dispatched: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking dispatch mark: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("reminder %d", id)
	}
	return nil
}

func (r *SQLiteReminderRepo) Update(ctx context.Context, rem *domain.Reminder) error {
	if err := validateReminder(rem); err != nil {
		return err
	}
	rem.UpdatedAt = nowUTC()

	var entityType *string
	if rem.RelatedEntityType != nil {
		s := string(*rem.RelatedEntityType)
		entityType = &s
	}

	query := `UPDATE reminders SET reminder_time = ?, message = ?, is_completed = ?,
		recurrence_config = ?, related_entity_type = ?, related_entity_id = ?,
		snoozed_until = ?, dispatched_at = ?, tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rem.ReminderTime.UTC().Format(time.RFC3339), rem.Message, boolToInt(rem.IsCompleted),
		recurrenceToJSON(rem.Recurrence), nullableString(entityType), nullableInt64(rem.RelatedEntityID),
		nullableTimeToString(rem.SnoozedUntil, time.RFC3339),
		nullableTimeToString(rem.DispatchedAt, time.RFC3339),
		tagsToJSON(rem.Tags), rem.UpdatedAt.Format(time.RFC3339), rem.ID)
	if err != nil {
		return fmt.Errorf("updating reminder: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking reminder update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("reminder %d", rem.ID)
	}
	return nil
}

func (r *SQLiteReminderRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking reminder delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("reminder %d", id)
	}
	return nil
}
