package domain

import "time"

type Employer struct {
	ID        int64
	Name      string
	Notes     string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
