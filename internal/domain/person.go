package domain

import "time"

type Person struct {
	ID             int64
	FullName       string
	Email          string
	Phone          string
	LinkedinURL    string
	Company        string
	Title          string
	Notes          string
	AdditionalInfo map[string]string
	IsStakeholder  bool
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EmploymentHistory records a person's role at a client. A nil EndDate
// marks the current engagement; at most one row per (person, client) may
// be current.
type EmploymentHistory struct {
	ID        int64
	PersonID  int64
	ClientID  int64
	Role      string
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
