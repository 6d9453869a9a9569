package domain

import "time"

// NextOccurrence computes the reminder time that follows t for the given
// frequency. The shift happens on the local calendar in loc so the clock
// time is preserved across DST transitions; the result is returned in UTC.
// Monthly recurrence clamps to the last day when the target month is
// shorter (Jan 31 -> Feb 28/29).
func NextOccurrence(t time.Time, freq RecurrenceFrequency, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)

	switch freq {
	case RecurDaily:
		return sameClock(local, 0, 0, 1).UTC()
	case RecurWeekly:
		return sameClock(local, 0, 0, 7).UTC()
	case RecurMonthly:
		year, month, day := local.Date()
		month++
		if month > time.December {
			month = time.January
			year++
		}
		if last := daysIn(year, month); day > last {
			day = last
		}
		next := time.Date(year, month, day,
			local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
		return next.UTC()
	default:
		return t.UTC()
	}
}

// sameClock shifts the calendar date while pinning the wall-clock time.
// time.Date renormalizes, which is exactly the DST-safe behavior wanted
// for daily/weekly steps.
func sameClock(local time.Time, years, months, days int) time.Time {
	return time.Date(local.Year()+years, local.Month()+time.Month(months), local.Day()+days,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), local.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek returns the most recent week boundary at 00:00 local time at
// or before t.
func StartOfWeek(t time.Time, boundary time.Weekday, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	offset := (int(day.Weekday()) - int(boundary) + 7) % 7
	return day.AddDate(0, 0, -offset)
}
