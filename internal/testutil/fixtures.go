package testutil

import (
	"database/sql"
	"testing"
)

const seededAt = "2026-01-01T00:00:00Z"

// SeedClient inserts a client row directly and returns its id. Fixtures
// write raw SQL so this package stays importable from repository tests.
func SeedClient(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO clients (name, type, status, notes, tags, created_at, updated_at)
		 VALUES (?, 'company', 'active', '', '[]', ?, ?)`,
		name, seededAt, seededAt)
	if err != nil {
		t.Fatalf("seeding client %q: %v", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seeding client %q: %v", name, err)
	}
	return id
}

// SeedProject inserts a project row under the given client and returns its id.
func SeedProject(t *testing.T, db *sql.DB, clientID int64, name string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO projects (name, client_id, description, status, tags, created_at, updated_at)
		 VALUES (?, ?, '', 'active', '[]', ?, ?)`,
		name, clientID, seededAt, seededAt)
	if err != nil {
		t.Fatalf("seeding project %q: %v", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seeding project %q: %v", name, err)
	}
	return id
}

// SeedPerson inserts a person row and returns its id.
func SeedPerson(t *testing.T, db *sql.DB, fullName string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO persons (full_name, additional_info, is_stakeholder, tags, created_at, updated_at)
		 VALUES (?, '{}', 0, '[]', ?, ?)`,
		fullName, seededAt, seededAt)
	if err != nil {
		t.Fatalf("seeding person %q: %v", fullName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seeding person %q: %v", fullName, err)
	}
	return id
}

// Ptr returns a pointer to v; convenient for optional fixture fields.
func Ptr[T any](v T) *T {
	return &v
}
