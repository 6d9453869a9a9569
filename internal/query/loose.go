package query

import (
	"strings"

	"github.com/jarosser06/mosaic/internal/apperr"
)

// ParseLoose translates a small set of recognized phrases into structured
// queries. It is a convenience dispatcher, not a language: anything it does
// not recognize is rejected so callers fall back to the structured form.
func ParseLoose(text string) (*Query, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return nil, apperr.Invalid("empty query text")
	}

	entity, ok := looseEntity(fields[0])
	if !ok {
		return nil, apperr.Invalid("unrecognized query %q; use the structured form", text)
	}
	q := &Query{EntityType: entity}

	rest := strings.Join(fields[1:], " ")
	switch rest {
	case "":
		return q, nil
	case "today":
		q.Filters = append(q.Filters, timeFilter(entity, "today"))
	case "this week":
		q.Filters = append(q.Filters, timeFilter(entity, "this_week"))
	case "this month":
		q.Filters = append(q.Filters, timeFilter(entity, "this_month"))
	case "this year":
		q.Filters = append(q.Filters, timeFilter(entity, "this_year"))
	default:
		return nil, apperr.Invalid("unrecognized query %q; use the structured form", text)
	}
	return q, nil
}

func looseEntity(word string) (string, bool) {
	switch word {
	case "sessions", "session", "work":
		return "work_session", true
	case "meetings", "meeting":
		return "meeting", true
	case "people", "person":
		return "person", true
	case "clients", "client":
		return "client", true
	case "projects", "project":
		return "project", true
	case "employers", "employer":
		return "employer", true
	case "notes", "note":
		return "note", true
	case "reminders", "reminder":
		return "reminder", true
	}
	return "", false
}

// timeFilter picks the natural time field for each entity.
func timeFilter(entity, token string) FilterClause {
	field := "created_at"
	switch entity {
	case "work_session":
		field = "date"
	case "meeting":
		field = "start_time"
	case "reminder":
		field = "reminder_time"
	}
	return FilterClause{Field: field, Operator: OpGte, Value: token}
}
