package domain

import "time"

type Client struct {
	ID              int64
	Name            string
	Type            ClientType
	Status          ClientStatus
	ContactPersonID *int64
	Notes           string
	Tags            []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
