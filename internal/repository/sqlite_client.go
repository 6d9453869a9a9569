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

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(db db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: db}
}

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	if c.Name == "" {
		return apperr.Invalid("client name must not be empty")
	}
	if c.Type == "" {
		c.Type = domain.ClientCompany
	}
	if c.Status == "" {
		c.Status = domain.ClientActive
	}
	now := nowUTC()
	c.CreatedAt, c.UpdatedAt = now, now

	query := `INSERT INTO clients (name, type, status, contact_person_id, notes, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		c.Name, string(c.Type), string(c.Status), nullableInt64(c.ContactPersonID),
		c.Notes, tagsToJSON(c.Tags),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting client: %w", translateConstraint(err))
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading client id: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, status, contact_person_id, notes, tags, created_at, updated_at
		 FROM clients WHERE id = ?`, id)

	var c domain.Client
	var typeStr, statusStr, tagsStr, createdStr, updatedStr string
	var contact sql.NullInt64

	err := row.Scan(&c.ID, &c.Name, &typeStr, &statusStr, &contact, &c.Notes,
		&tagsStr, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("client %d", id)
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	c.Type = domain.ClientType(typeStr)
	c.Status = domain.ClientStatus(statusStr)
	if contact.Valid {
		c.ContactPersonID = &contact.Int64
	}
	c.Tags = tagsFromJSON(tagsStr)
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &c, nil
}

func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	if c.Name == "" {
		return apperr.Invalid("client name must not be empty")
	}
	c.UpdatedAt = nowUTC()

	query := `UPDATE clients SET name = ?, type = ?, status = ?, contact_person_id = ?,
		notes = ?, tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name, string(c.Type), string(c.Status), nullableInt64(c.ContactPersonID),
		c.Notes, tagsToJSON(c.Tags), c.UpdatedAt.Format(time.RFC3339), c.ID)
	if err != nil {
		return fmt.Errorf("updating client: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking client update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("client %d", c.ID)
	}
	return nil
}

func (r *SQLiteClientRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking client delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("client %d", id)
	}
	return nil
}
