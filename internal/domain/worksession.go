package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkSession is a single block of time spent on one project. DurationHours
// is always the half-hour-rounded span between StartTime and EndTime, and
// Date is the local calendar date of StartTime in the user's timezone.
type WorkSession struct {
	ID            int64
	ProjectID     int64
	Date          time.Time
	StartTime     time.Time
	EndTime       time.Time
	DurationHours decimal.Decimal
	Summary       string
	PrivacyLevel  PrivacyLevel
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
