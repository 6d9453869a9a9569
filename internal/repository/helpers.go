package repository

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jarosser06/mosaic/internal/apperr"
)

// dateLayout is the standard date format for dates in SQLite.
const dateLayout = "2006-01-02"

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the formatted string.
func nullableTimeToString(t *time.Time, layout string) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

// nullableInt64 converts a *int64 to a value suitable for SQLite storage.
func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullableString converts a *string to a value suitable for SQLite storage.
func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time truncated to whole seconds, which is
// what RFC3339 storage round-trips.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// tagsToJSON normalizes a tag set (dedupe, drop empties) and serializes it
// for storage.
func tagsToJSON(tags []string) string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// tagsFromJSON deserializes a stored tag set. Corrupt values decode as empty.
func tagsFromJSON(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// mapToJSON serializes a string map for storage; nil maps store as "{}".
func mapToJSON(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// mapFromJSON deserializes a stored string map.
func mapFromJSON(s string) map[string]string {
	if s == "" || s == "{}" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// translateConstraint maps SQLite constraint failures onto the error
// taxonomy: FK violations are bad references and CHECK violations bad values
// (both InvalidArgument), unique violations are conflicts. Everything else
// passes through.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return apperr.Invalid("referenced entity violates a foreign key constraint")
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return apperr.Conflict("row violates a unique constraint")
	case strings.Contains(msg, "CHECK constraint failed"):
		return apperr.Invalid("value violates a check constraint")
	default:
		return err
	}
}
