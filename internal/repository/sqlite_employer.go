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

// SQLiteEmployerRepo implements EmployerRepo using a SQLite database.
type SQLiteEmployerRepo struct {
	db db.DBTX
}

// NewSQLiteEmployerRepo creates a new SQLiteEmployerRepo.
func NewSQLiteEmployerRepo(db db.DBTX) *SQLiteEmployerRepo {
	return &SQLiteEmployerRepo{db: db}
}

func (r *SQLiteEmployerRepo) Create(ctx context.Context, e *domain.Employer) error {
	if e.Name == "" {
		return apperr.Invalid("employer name must not be empty")
	}
	now := nowUTC()
	e.CreatedAt, e.UpdatedAt = now, now

	query := `INSERT INTO employers (name, notes, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		e.Name, e.Notes, tagsToJSON(e.Tags),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting employer: %w", translateConstraint(err))
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading employer id: %w", err)
	}
	return nil
}

func (r *SQLiteEmployerRepo) GetByID(ctx context.Context, id int64) (*domain.Employer, error) {
	query := `SELECT id, name, notes, tags, created_at, updated_at FROM employers WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var e domain.Employer
	var tagsStr, createdStr, updatedStr string
	err := row.Scan(&e.ID, &e.Name, &e.Notes, &tagsStr, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("employer %d", id)
		}
		return nil, fmt.Errorf("scanning employer: %w", err)
	}
	e.Tags = tagsFromJSON(tagsStr)
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &e, nil
}

func (r *SQLiteEmployerRepo) Update(ctx context.Context, e *domain.Employer) error {
	if e.Name == "" {
		return apperr.Invalid("employer name must not be empty")
	}
	e.UpdatedAt = nowUTC()

	query := `UPDATE employers SET name = ?, notes = ?, tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Name, e.Notes, tagsToJSON(e.Tags), e.UpdatedAt.Format(time.RFC3339), e.ID)
	if err != nil {
		return fmt.Errorf("updating employer: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking employer update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("employer %d", e.ID)
	}
	return nil
}

func (r *SQLiteEmployerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting employer: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking employer delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("employer %d", id)
	}
	return nil
}
