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

// SQLiteEmploymentHistoryRepo implements EmploymentHistoryRepo using a
// SQLite database.
type SQLiteEmploymentHistoryRepo struct {
	db db.DBTX
}

// NewSQLiteEmploymentHistoryRepo creates a new SQLiteEmploymentHistoryRepo.
func NewSQLiteEmploymentHistoryRepo(db db.DBTX) *SQLiteEmploymentHistoryRepo {
	return &SQLiteEmploymentHistoryRepo{db: db}
}

func (r *SQLiteEmploymentHistoryRepo) Create(ctx context.Context, h *domain.EmploymentHistory) error {
	// A nil end date marks the current role; only one may be current per
	// (person, client).
	if h.EndDate == nil {
		current, err := r.hasCurrent(ctx, h.PersonID, h.ClientID, 0)
		if err != nil {
			return err
		}
		if current {
			return apperr.Conflict("person %d already has a current role at client %d", h.PersonID, h.ClientID)
		}
	}

	now := nowUTC()
	h.CreatedAt, h.UpdatedAt = now, now

	query := `INSERT INTO employment_history (person_id, client_id, role, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		h.PersonID, h.ClientID, h.Role,
		nullableTimeToString(h.StartDate, dateLayout),
		nullableTimeToString(h.EndDate, dateLayout),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting employment history: %w", translateConstraint(err))
	}
	h.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading employment history id: %w", err)
	}
	return nil
}

func (r *SQLiteEmploymentHistoryRepo) hasCurrent(ctx context.Context, personID, clientID, excludeID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employment_history
		 WHERE person_id = ? AND client_id = ? AND end_date IS NULL AND id != ?`,
		personID, clientID, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking current employment: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteEmploymentHistoryRepo) GetByID(ctx context.Context, id int64) (*domain.EmploymentHistory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, person_id, client_id, role, start_date, end_date, created_at, updated_at
		 FROM employment_history WHERE id = ?`, id)

	h, err := scanEmployment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("employment history %d", id)
		}
		return nil, err
	}
	return h, nil
}

func (r *SQLiteEmploymentHistoryRepo) ListByPerson(ctx context.Context, personID int64) ([]*domain.EmploymentHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, person_id, client_id, role, start_date, end_date, created_at, updated_at
		 FROM employment_history WHERE person_id = ? ORDER BY start_date, id`, personID)
	if err != nil {
		return nil, fmt.Errorf("listing employment history: %w", err)
	}
	defer rows.Close()

	var out []*domain.EmploymentHistory
	for rows.Next() {
		h, err := scanEmployment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employment history: %w", err)
	}
	return out, nil
}

func scanEmployment(scan func(dest ...any) error) (*domain.EmploymentHistory, error) {
	var h domain.EmploymentHistory
	var startStr, endStr sql.NullString
	var createdStr, updatedStr string

	err := scan(&h.ID, &h.PersonID, &h.ClientID, &h.Role, &startStr, &endStr, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}
	h.StartDate = parseNullableTime(startStr, dateLayout)
	h.EndDate = parseNullableTime(endStr, dateLayout)
	if h.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if h.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &h, nil
}

func (r *SQLiteEmploymentHistoryRepo) Update(ctx context.Context, h *domain.EmploymentHistory) error {
	if h.EndDate == nil {
		current, err := r.hasCurrent(ctx, h.PersonID, h.ClientID, h.ID)
		if err != nil {
			return err
		}
		if current {
			return apperr.Conflict("person %d already has a current role at client %d", h.PersonID, h.ClientID)
		}
	}
	h.UpdatedAt = nowUTC()

	query := `UPDATE employment_history SET person_id = ?, client_id = ?, role = ?,
		start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		h.PersonID, h.ClientID, h.Role,
		nullableTimeToString(h.StartDate, dateLayout),
		nullableTimeToString(h.EndDate, dateLayout),
		h.UpdatedAt.Format(time.RFC3339), h.ID)
	if err != nil {
		return fmt.Errorf("updating employment history: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking employment history update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("employment history %d", h.ID)
	}
	return nil
}

func (r *SQLiteEmploymentHistoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employment_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting employment history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking employment history delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("employment history %d", id)
	}
	return nil
}
