package rounding

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/apperr"
)

func TestRoundHalfHour_Table(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{-10, "0.0"},
		{0, "0.0"},
		{1, "0.5"},
		{15, "0.5"},
		{29, "0.5"},
		{30, "0.5"}, // boundary rounds down
		{31, "1.0"},
		{45, "1.0"},
		{59, "1.0"},
		{60, "1.0"},
		{61, "1.5"},
		{90, "1.5"},
		{91, "2.0"},
		{105, "2.0"}, // 1h45m
		{120, "2.0"},
		{150, "2.5"},
	}
	for _, tc := range cases {
		got := RoundHalfHour(tc.minutes)
		assert.Equal(t, tc.want, got.StringFixed(1), "minutes=%d", tc.minutes)
	}
}

func TestRoundHalfHour_Monotonic(t *testing.T) {
	prev := RoundHalfHour(0)
	for m := 1; m <= 24*60; m++ {
		cur := RoundHalfHour(m)
		assert.False(t, cur.LessThan(prev), "rounding must be monotonic at m=%d", m)
		prev = cur
	}
}

func TestRoundHalfHour_Periodic(t *testing.T) {
	one := decimal.New(10, -1)
	for m := 0; m <= 180; m++ {
		assert.True(t, RoundHalfHour(m+60).Equal(RoundHalfHour(m).Add(one)),
			"period law fails at m=%d", m)
	}
}

func TestDurationRounded(t *testing.T) {
	start := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		end  time.Time
		want string
	}{
		{start.Add(105 * time.Minute), "2.0"},
		{start.Add(29*time.Minute + 59*time.Second), "0.5"}, // truncates to 29m
		{start.Add(30 * time.Minute), "0.5"},
		{start.Add(30*time.Minute + 1*time.Second), "0.5"}, // truncates to 30m
		{start.Add(31 * time.Minute), "1.0"},
		{start, "0.0"},
	}
	for _, tc := range cases {
		got, err := DurationRounded(start, tc.end)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.StringFixed(1), "end=%s", tc.end)
	}
}

func TestDurationRounded_InvalidInterval(t *testing.T) {
	start := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	_, err := DurationRounded(start, start.Add(-time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestTenthsRoundTrip(t *testing.T) {
	for m := 0; m <= 600; m += 7 {
		d := RoundHalfHour(m)
		assert.True(t, d.Equal(FromTenths(ToTenths(d))), "tenths round trip at m=%d", m)
	}
}
