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

// SQLiteNoteRepo implements NoteRepo using a SQLite database.
type SQLiteNoteRepo struct {
	db db.DBTX
}

// NewSQLiteNoteRepo creates a new SQLiteNoteRepo.
func NewSQLiteNoteRepo(db db.DBTX) *SQLiteNoteRepo {
	return &SQLiteNoteRepo{db: db}
}

func validateNote(n *domain.Note) error {
	if n.Text == "" {
		return apperr.Invalid("note text must not be empty")
	}
	// entity_type and entity_id travel together.
	if (n.EntityType == nil) != (n.EntityID == nil) {
		return apperr.Invalid("entity_type and entity_id must both be set or both be null")
	}
	if n.EntityType != nil && !domain.ValidEntityType(string(*n.EntityType)) {
		return apperr.Invalid("unknown entity_type %q", *n.EntityType)
	}
	return nil
}

func (r *SQLiteNoteRepo) Create(ctx context.Context, n *domain.Note) error {
	if err := validateNote(n); err != nil {
		return err
	}
	now := nowUTC()
	n.CreatedAt, n.UpdatedAt = now, now

	var entityType *string
	if n.EntityType != nil {
		s := string(*n.EntityType)
		entityType = &s
	}

	query := `INSERT INTO notes (text, privacy_level, entity_type, entity_id, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		n.Text, string(n.PrivacyLevel), nullableString(entityType), nullableInt64(n.EntityID),
		tagsToJSON(n.Tags), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting note: %w", translateConstraint(err))
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading note id: %w", err)
	}
	return nil
}

func (r *SQLiteNoteRepo) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, text, privacy_level, entity_type, entity_id, tags, created_at, updated_at
		 FROM notes WHERE id = ?`, id)

	var n domain.Note
	var privacyStr, tagsStr, createdStr, updatedStr string
	var entityType sql.NullString
	var entityID sql.NullInt64

	err := row.Scan(&n.ID, &n.Text, &privacyStr, &entityType, &entityID,
		&tagsStr, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("note %d", id)
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}
	n.PrivacyLevel = domain.PrivacyLevel(privacyStr)
	if entityType.Valid {
		et := domain.EntityType(entityType.String)
		n.EntityType = &et
	}
	if entityID.Valid {
		n.EntityID = &entityID.Int64
	}
	n.Tags = tagsFromJSON(tagsStr)
	if n.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if n.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &n, nil
}

func (r *SQLiteNoteRepo) Update(ctx context.Context, n *domain.Note) error {
	if err := validateNote(n); err != nil {
		return err
	}
	n.UpdatedAt = nowUTC()

	var entityType *string
	if n.EntityType != nil {
		s := string(*n.EntityType)
		entityType = &s
	}

	query := `UPDATE notes SET text = ?, privacy_level = ?, entity_type = ?, entity_id = ?,
		tags = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		n.Text, string(n.PrivacyLevel), nullableString(entityType), nullableInt64(n.EntityID),
		tagsToJSON(n.Tags), n.UpdatedAt.Format(time.RFC3339), n.ID)
	if err != nil {
		return fmt.Errorf("updating note: %w", translateConstraint(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking note update: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("note %d", n.ID)
	}
	return nil
}

func (r *SQLiteNoteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking note delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("note %d", id)
	}
	return nil
}
