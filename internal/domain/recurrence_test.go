package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrence_Daily(t *testing.T) {
	r := time.Date(2026, 1, 19, 9, 0, 0, 0, time.UTC)
	next := NextOccurrence(r, RecurDaily, time.UTC)
	assert.Equal(t, 24*time.Hour, next.Sub(r))
}

func TestNextOccurrence_Weekly(t *testing.T) {
	r := time.Date(2026, 1, 19, 9, 0, 0, 0, time.UTC) // a Monday
	next := NextOccurrence(r, RecurWeekly, time.UTC)
	assert.Equal(t, 7*24*time.Hour, next.Sub(r))
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC), next)
}

func TestNextOccurrence_Monthly(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		// Jan 31 clamps to the short February
		{time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC)},
		// leap year February
		{time.Date(2028, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2028, 2, 29, 8, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC), time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC)},
		{time.Date(2026, 4, 15, 8, 0, 0, 0, time.UTC), time.Date(2026, 5, 15, 8, 0, 0, 0, time.UTC)},
		// December rolls the year
		{time.Date(2026, 12, 10, 8, 0, 0, 0, time.UTC), time.Date(2027, 1, 10, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := NextOccurrence(tc.in, RecurMonthly, time.UTC)
		assert.Equal(t, tc.want, got, "in=%s", tc.in)
	}
}

func TestNextOccurrence_PreservesLocalClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-07 09:00 EST; the next day DST begins.
	r := time.Date(2026, 3, 7, 9, 0, 0, 0, loc)
	next := NextOccurrence(r.UTC(), RecurDaily, loc)
	assert.Equal(t, 9, next.In(loc).Hour(), "clock time must be preserved across the DST jump")
	assert.Equal(t, 8, next.In(loc).Day())
}

func TestStartOfWeek(t *testing.T) {
	// 2026-01-21 is a Wednesday.
	wed := time.Date(2026, 1, 21, 15, 30, 0, 0, time.UTC)

	monday := StartOfWeek(wed, time.Monday, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), monday)

	sunday := StartOfWeek(wed, time.Sunday, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC), sunday)

	// A boundary day is its own week start.
	assert.Equal(t, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC),
		StartOfWeek(time.Date(2026, 1, 19, 1, 0, 0, 0, time.UTC), time.Monday, time.UTC))
}
