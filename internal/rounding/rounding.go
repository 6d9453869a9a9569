// Package rounding implements the half-hour billing arithmetic. All stored
// durations flow through here; binary floating point is never used.
package rounding

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jarosser06/mosaic/internal/apperr"
)

var (
	half = decimal.New(5, -1)  // 0.5
	one  = decimal.New(10, -1) // 1.0
)

// RoundHalfHour rounds a minute count to billing hours at one decimal
// place. Non-positive input yields 0.0; an exact hour keeps its value; a
// remainder of 1-30 minutes adds half an hour, 31-59 a full hour. The
// 30-minute boundary rounds down to the half hour.
func RoundHalfHour(minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero.Round(1)
	}
	hours := decimal.NewFromInt(int64(minutes / 60))
	switch r := minutes % 60; {
	case r == 0:
		return hours.Round(1)
	case r <= 30:
		return hours.Add(half).Round(1)
	default:
		return hours.Add(one).Round(1)
	}
}

// DurationRounded returns the rounded hours spanned by [start, end].
// Seconds and sub-second components are truncated before rounding, so
// 29m59s bills as 29 minutes. An end before start is an invalid interval.
func DurationRounded(start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, apperr.Invalid("end time %s precedes start time %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	minutes := int(end.Sub(start) / time.Minute)
	return RoundHalfHour(minutes), nil
}

// ToTenths converts a 1dp decimal to its fixed-point storage form
// (tenths of an hour).
func ToTenths(d decimal.Decimal) int64 {
	return d.Shift(1).IntPart()
}

// FromTenths converts a stored tenths value back to a 1dp decimal.
func FromTenths(t int64) decimal.Decimal {
	return decimal.New(t, -1)
}
