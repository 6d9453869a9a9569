package domain

import "time"

// Note is free-form text optionally attached to one entity. EntityType and
// EntityID are either both set or both nil.
type Note struct {
	ID           int64
	Text         string
	PrivacyLevel PrivacyLevel
	EntityType   *EntityType
	EntityID     *int64
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
