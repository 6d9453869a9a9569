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

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

func validateProject(p *domain.Project) error {
	if p.Name == "" {
		return apperr.Invalid("project name must not be empty")
	}
	if p.Status == domain.ProjectCompleted && p.EndDate == nil {
		return apperr.Invalid("completed project requires an end_date")
	}
	return nil
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	if err := validateProject(p); err != nil {
		return err
	}
	now := nowUTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `INSERT INTO projects (name, client_id, on_behalf_of_id, description, status,
		start_date, end_date, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.ClientID, nullableInt64(p.OnBehalfOfID), p.Description, string(p.Status),
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		tagsToJSON(p.Tags), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting project: %w", translateConstraint(err))
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading project id: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, client_id, on_behalf_of_id, description, status,
			start_date, end_date, tags, created_at, updated_at
		 FROM projects WHERE id = ?`, id)

	var p domain.Project
	var statusStr, tagsStr, createdStr, updatedStr string
	var onBehalf sql.NullInt64
	var startStr, endStr sql.NullString

	err := row.Scan(&p.ID, &p.Name, &p.ClientID, &onBehalf, &p.Description,
		&statusStr, &startStr, &endStr, &tagsStr, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("project %d", id)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if onBehalf.Valid {
		p.OnBehalfOfID = &onBehalf.Int64
	}
	p.Status = domain.ProjectStatus(statusStr)
	p.StartDate = parseNullableTime(startStr, dateLayout)
	p.EndDate = parseNullableTime(endStr, dateLayout)
	p.Tags = tagsFromJSON(tagsStr)
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	if err := validateProject(p); err != nil {
		return err
	}
	p.UpdatedAt = nowUTC()

	query := `UPDATE projects SET name = ?, client_id = ?, on_behalf_of_id = ?, description = ?,
		status = ?, start_date = ?, end_date = ?, tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.ClientID, nullableInt64(p.OnBehalfOfID), p.Description, string(p.Status),
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		tagsToJSON(p.Tags), p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking project update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("project %d", p.ID)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking project delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("project %d", id)
	}
	return nil
}
