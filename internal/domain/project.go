package domain

import "time"

type Project struct {
	ID           int64
	Name         string
	ClientID     int64
	OnBehalfOfID *int64
	Description  string
	Status       ProjectStatus
	StartDate    *time.Time
	EndDate      *time.Time
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
