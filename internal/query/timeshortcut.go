package query

import (
	"time"

	"github.com/jarosser06/mosaic/internal/domain"
)

// Time shortcut tokens, legal wherever a date or datetime literal is.
// Resolution happens at compile time against the user's timezone and week
// boundary.
var shortcutTokens = map[string]bool{
	"today":      true,
	"this_week":  true,
	"this_month": true,
	"this_year":  true,
	"now":        true,
}

// resolveShortcut turns a shortcut token into a storage-form literal for
// the given field type. Returns false when tok is not a shortcut.
func resolveShortcut(tok string, ft fieldType, now time.Time, profile *domain.UserProfile) (string, bool) {
	if !shortcutTokens[tok] {
		return "", false
	}
	loc := profile.Location()
	local := now.In(loc)

	var instant time.Time
	switch tok {
	case "now":
		instant = now
	case "today":
		instant = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	case "this_week":
		boundary := time.Monday
		if profile != nil {
			boundary = profile.WeekBoundary
		}
		instant = domain.StartOfWeek(now, boundary, loc)
	case "this_month":
		instant = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	case "this_year":
		instant = time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
	}

	if ft == typeDate {
		return instant.In(loc).Format("2006-01-02"), true
	}
	return instant.UTC().Format(time.RFC3339), true
}
