package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employers (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL CHECK(name != ''),
		notes      TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS persons (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name       TEXT NOT NULL,
		email           TEXT NOT NULL DEFAULT '',
		phone           TEXT NOT NULL DEFAULT '',
		linkedin_url    TEXT NOT NULL DEFAULT '',
		company         TEXT NOT NULL DEFAULT '',
		title           TEXT NOT NULL DEFAULT '',
		notes           TEXT NOT NULL DEFAULT '',
		additional_info TEXT NOT NULL DEFAULT '{}',
		is_stakeholder  INTEGER NOT NULL DEFAULT 0,
		tags            TEXT NOT NULL DEFAULT '[]',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		name              TEXT NOT NULL,
		type              TEXT NOT NULL DEFAULT 'company'
		                  CHECK(type IN ('company','individual')),
		status            TEXT NOT NULL DEFAULT 'active'
		                  CHECK(status IN ('active','past')),
		contact_person_id INTEGER REFERENCES persons(id) ON DELETE SET NULL,
		notes             TEXT NOT NULL DEFAULT '',
		tags              TEXT NOT NULL DEFAULT '[]',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		name            TEXT NOT NULL,
		client_id       INTEGER NOT NULL REFERENCES clients(id) ON DELETE RESTRICT,
		on_behalf_of_id INTEGER REFERENCES employers(id) ON DELETE RESTRICT,
		description     TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'active'
		                CHECK(status IN ('active','paused','completed')),
		start_date      TEXT,
		end_date        TEXT,
		tags            TEXT NOT NULL DEFAULT '[]',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,

	`CREATE TABLE IF NOT EXISTS employment_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id  INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		client_id  INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		role       TEXT NOT NULL DEFAULT '',
		start_date TEXT,
		end_date   TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_employment_person ON employment_history(person_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employment_client ON employment_history(client_id)`,

	`CREATE TABLE IF NOT EXISTS work_sessions (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id      INTEGER NOT NULL REFERENCES projects(id) ON DELETE RESTRICT,
		date            TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		duration_tenths INTEGER NOT NULL CHECK(duration_tenths >= 0),
		summary         TEXT NOT NULL DEFAULT '',
		privacy_level   TEXT NOT NULL DEFAULT 'private'
		                CHECK(privacy_level IN ('public','internal','private')),
		tags            TEXT NOT NULL DEFAULT '[]',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_sessions_project ON work_sessions(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_sessions_date ON work_sessions(date)`,

	`CREATE TABLE IF NOT EXISTS meetings (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		title            TEXT NOT NULL,
		start_time       TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL CHECK(duration_minutes > 0),
		summary          TEXT NOT NULL DEFAULT '',
		privacy_level    TEXT NOT NULL DEFAULT 'private'
		                 CHECK(privacy_level IN ('public','internal','private')),
		project_id       INTEGER REFERENCES projects(id) ON DELETE SET NULL,
		meeting_type     TEXT NOT NULL DEFAULT '',
		location         TEXT NOT NULL DEFAULT '',
		tags             TEXT NOT NULL DEFAULT '[]',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_meetings_project ON meetings(project_id)`,

	`CREATE TABLE IF NOT EXISTS meeting_attendees (
		meeting_id INTEGER NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		person_id  INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		PRIMARY KEY (meeting_id, person_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notes (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		text          TEXT NOT NULL,
		privacy_level TEXT NOT NULL DEFAULT 'private'
		              CHECK(privacy_level IN ('public','internal','private')),
		entity_type   TEXT,
		entity_id     INTEGER,
		tags          TEXT NOT NULL DEFAULT '[]',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		CHECK((entity_type IS NULL) = (entity_id IS NULL))
	)`,

	`CREATE TABLE IF NOT EXISTS reminders (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		reminder_time       TEXT NOT NULL,
		message             TEXT NOT NULL,
		is_completed        INTEGER NOT NULL DEFAULT 0,
		recurrence_config   TEXT,
		related_entity_type TEXT,
		related_entity_id   INTEGER,
		snoozed_until       TEXT,
		dispatched_at       TEXT,
		tags                TEXT NOT NULL DEFAULT '[]',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(is_completed, reminder_time)`,

	`CREATE TABLE IF NOT EXISTS user_profile (
		id                    TEXT PRIMARY KEY DEFAULT 'default',
		name                  TEXT NOT NULL DEFAULT '',
		email                 TEXT NOT NULL DEFAULT '',
		timezone              TEXT NOT NULL DEFAULT 'UTC',
		week_boundary         INTEGER NOT NULL DEFAULT 1,
		default_privacy_level TEXT NOT NULL DEFAULT 'private'
		                      CHECK(default_privacy_level IN ('public','internal','private'))
	)`,

	// Seed default user profile
	`INSERT OR IGNORE INTO user_profile (id) VALUES ('default')`,
}
