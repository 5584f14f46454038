package compliance

import (
	"time"

	"github.com/yuadm/first-step-greet/internal/pkg/period"
)

// TargetTable names the entity table a compliance type applies to.
type TargetTable string

const (
	TargetEmployees TargetTable = "employees"
	TargetClients   TargetTable = "clients"
)

func (t TargetTable) Valid() bool {
	return t == TargetEmployees || t == TargetClients
}

// RecordTable returns the period records table for the target.
func (t TargetTable) RecordTable() string {
	if t == TargetClients {
		return "client_compliance_period_records"
	}
	return "employee_compliance_period_records"
}

// EntityColumn returns the column of the records table holding the entity ID.
func (t TargetTable) EntityColumn() string {
	if t == TargetClients {
		return "client_id"
	}
	return "employee_id"
}

// Status is the derived state of one entity for one period. It is computed
// per request and never stored.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusDue       Status = "due"
	// StatusPending is part of the status vocabulary but no resolver rule
	// produces it.
	StatusPending Status = "pending"
)

// Type entity
type Type struct {
	ID          string
	Name        string
	Description *string
	Frequency   period.Frequency
	TargetTable TargetTable
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record entity. Status is free text as entered; only "completed" and
// "overdue" carry meaning for status resolution.
type Record struct {
	ID               string
	ComplianceTypeID string
	EntityID         string
	PeriodIdentifier string
	CompletionDate   *time.Time
	Status           string
	IsOverdue        bool
	Notes            *string
	EvidencePath     *string
	CompletedBy      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCompleted reports whether the record closes its period.
func (r Record) IsCompleted() bool {
	return r.CompletionDate != nil || r.Status == string(StatusCompleted)
}

// IsMarkedOverdue reports whether the record itself flags the period overdue.
func (r Record) IsMarkedOverdue() bool {
	return r.IsOverdue || r.Status == string(StatusOverdue)
}

// SubjectKind tags which table a Subject came from.
type SubjectKind string

const (
	SubjectEmployee SubjectKind = "employee"
	SubjectClient   SubjectKind = "client"
)

// Subject is an employee or client as seen by status resolution.
type Subject struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	BranchID *string     `json:"branch_id,omitempty"`
	Kind     SubjectKind `json:"kind"`
}

// StatusEntry is the resolved status of one subject.
type StatusEntry struct {
	Subject Subject
	Record  *Record
	Status  Status
}

// Summary counts resolved entries by status.
type Summary struct {
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	Due       int `json:"due"`
	Pending   int `json:"pending"`
	Total     int `json:"total"`
}
