package domain

import "time"

// UserProfile is the singleton owner record. Timezone and WeekBoundary
// drive time-shortcut resolution and local-date computation; DefaultPrivacy
// applies when a write omits a privacy level.
type UserProfile struct {
	Name           string
	Email          string
	Timezone       string
	WeekBoundary   time.Weekday
	DefaultPrivacy PrivacyLevel
}

// Location resolves the configured timezone, falling back to UTC when the
// name is empty or unknown.
func (u *UserProfile) Location() *time.Location {
	if u == nil || u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
