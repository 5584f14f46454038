package client

import "time"

// Client is a person receiving care.
type Client struct {
	ID          string
	BranchID    *string
	FullName    string
	Address     *string
	PhoneNumber *string
	Status      Status
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Status string

const (
	StatusActive   Status = "active"
	StatusOnHold   Status = "on_hold"
	StatusInactive Status = "inactive"
)

func (c Client) IsActive() bool {
	return c.Status != StatusInactive
}
