package employee

import "time"

type Employee struct {
	ID               string
	BranchID         *string
	EmployeeCode     *string
	FullName         string
	Email            *string
	PhoneNumber      *string
	JobTitle         *string
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	HireDate         *time.Time
	LeavingDate      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentType string

const (
	EmploymentTypePermanent EmploymentType = "permanent"
	EmploymentTypeContract  EmploymentType = "contract"
	EmploymentTypeBank      EmploymentType = "bank"
	EmploymentTypeAgency    EmploymentType = "agency"
)

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusOnLeave  EmploymentStatus = "on_leave"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// IsActive reports whether the employee still counts toward compliance.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus != EmploymentStatusInactive
}
