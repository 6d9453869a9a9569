package domain

import "time"

type Meeting struct {
	ID              int64
	Title           string
	StartTime       time.Time
	DurationMinutes int
	Summary         string
	PrivacyLevel    PrivacyLevel
	ProjectID       *int64
	MeetingType     string
	Location        string
	AttendeeIDs     []int64
	Tags            []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
