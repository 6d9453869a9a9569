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

// SQLitePersonRepo implements PersonRepo using a SQLite database.
type SQLitePersonRepo struct {
	db db.DBTX
}

// NewSQLitePersonRepo creates a new SQLitePersonRepo.
func NewSQLitePersonRepo(db db.DBTX) *SQLitePersonRepo {
	return &SQLitePersonRepo{db: db}
}

const personColumns = `id, full_name, email, phone, linkedin_url, company, title,
	notes, additional_info, is_stakeholder, tags, created_at, updated_at`

func (r *SQLitePersonRepo) Create(ctx context.Context, p *domain.Person) error {
	if p.FullName == "" {
		return apperr.Invalid("person full_name must not be empty")
	}
	now := nowUTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `INSERT INTO persons (full_name, email, phone, linkedin_url, company, title,
		notes, additional_info, is_stakeholder, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.FullName, p.Email, p.Phone, p.LinkedinURL, p.Company, p.Title,
		p.Notes, mapToJSON(p.AdditionalInfo), boolToInt(p.IsStakeholder), tagsToJSON(p.Tags),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting person: %w", translateConstraint(err))
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading person id: %w", err)
	}
	return nil
}

func (r *SQLitePersonRepo) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = ?`, id)
	return r.scanPerson(row, id)
}

func (r *SQLitePersonRepo) scanPerson(row *sql.Row, id int64) (*domain.Person, error) {
	var p domain.Person
	var infoStr, tagsStr, createdStr, updatedStr string
	var stakeholder int

	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.LinkedinURL,
		&p.Company, &p.Title, &p.Notes, &infoStr, &stakeholder, &tagsStr,
		&createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("person %d", id)
		}
		return nil, fmt.Errorf("scanning person: %w", err)
	}
	p.AdditionalInfo = mapFromJSON(infoStr)
	p.IsStakeholder = intToBool(stakeholder)
	p.Tags = tagsFromJSON(tagsStr)
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

func (r *SQLitePersonRepo) Update(ctx context.Context, p *domain.Person) error {
	if p.FullName == "" {
		return apperr.Invalid("person full_name must not be empty")
	}
	p.UpdatedAt = nowUTC()

	query := `UPDATE persons SET full_name = ?, email = ?, phone = ?, linkedin_url = ?,
		company = ?, title = ?, notes = ?, additional_info = ?, is_stakeholder = ?,
		tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.FullName, p.Email, p.Phone, p.LinkedinURL, p.Company, p.Title,
		p.Notes, mapToJSON(p.AdditionalInfo), boolToInt(p.IsStakeholder),
		tagsToJSON(p.Tags), p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("updating person: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking person update: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("person %d", p.ID)
	}
	return nil
}

func (r *SQLitePersonRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", translateConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking person delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("person %d", id)
	}
	return nil
}
