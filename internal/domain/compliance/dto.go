package compliance

import (
	"time"

	"github.com/yuadm/first-step-greet/internal/pkg/period"
	"github.com/yuadm/first-step-greet/internal/pkg/validator"
)

type CreateTypeRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Frequency   string  `json:"frequency"`
	TargetTable string  `json:"target_table"`
}

func (r *CreateTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if _, err := period.ParseFrequency(r.Frequency); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "frequency",
			Message: "frequency must be one of weekly, monthly, quarterly, bi-annual, annual",
		})
	}

	if !TargetTable(r.TargetTable).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "target_table",
			Message: "target_table must be employees or clients",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateTypeRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *UpdateTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Frequency   string    `json:"frequency"`
	TargetTable string    `json:"target_table"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTypeResponse(t Type) TypeResponse {
	return TypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Frequency:   t.Frequency.String(),
		TargetTable: string(t.TargetTable),
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// PeriodStatusRequest selects a compliance type and period. An empty
// PeriodIdentifier means the period containing today.
type PeriodStatusRequest struct {
	TypeID           string
	PeriodIdentifier string
	BranchID         *string
}

type RecordResponse struct {
	ID               string    `json:"id"`
	ComplianceTypeID string    `json:"compliance_type_id"`
	EntityID         string    `json:"entity_id"`
	PeriodIdentifier string    `json:"period_identifier"`
	CompletionDate   *string   `json:"completion_date,omitempty"`
	Status           string    `json:"status"`
	IsOverdue        bool      `json:"is_overdue"`
	Notes            *string   `json:"notes,omitempty"`
	EvidencePath     *string   `json:"evidence_path,omitempty"`
	CompletedBy      *string   `json:"completed_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewRecordResponse(r Record) RecordResponse {
	var completion *string
	if r.CompletionDate != nil {
		s := r.CompletionDate.Format("2006-01-02")
		completion = &s
	}
	return RecordResponse{
		ID:               r.ID,
		ComplianceTypeID: r.ComplianceTypeID,
		EntityID:         r.EntityID,
		PeriodIdentifier: r.PeriodIdentifier,
		CompletionDate:   completion,
		Status:           r.Status,
		IsOverdue:        r.IsOverdue,
		Notes:            r.Notes,
		EvidencePath:     r.EvidencePath,
		CompletedBy:      r.CompletedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type StatusEntryResponse struct {
	Subject Subject         `json:"entity"`
	Status  Status          `json:"status"`
	Record  *RecordResponse `json:"record,omitempty"`
}

type PeriodStatusResponse struct {
	Type             TypeResponse          `json:"compliance_type"`
	PeriodIdentifier string                `json:"period_identifier"`
	Window           period.Window         `json:"window"`
	PeriodOverdue    bool                  `json:"period_overdue"`
	Entries          []StatusEntryResponse `json:"entries"`
	Summary          Summary               `json:"summary"`
}

type UpsertRecordRequest struct {
	TypeID           string  `json:"-"`
	EntityID         string  `json:"entity_id"`
	PeriodIdentifier string  `json:"period_identifier"`
	CompletionDate   *string `json:"completion_date,omitempty"`
	Status           string  `json:"status"`
	IsOverdue        bool    `json:"is_overdue"`
	Notes            *string `json:"notes,omitempty"`
	CompletedBy      *string `json:"-"`
}

func (r *UpsertRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "compliance_type_id",
			Message: "compliance_type_id is required",
		})
	}
	if validator.IsEmpty(r.EntityID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entity_id",
			Message: "entity_id is required",
		})
	}
	if validator.IsEmpty(r.PeriodIdentifier) {
		errs = append(errs, validator.ValidationError{
			Field:   "period_identifier",
			Message: "period_identifier is required",
		})
	}
	if r.CompletionDate != nil {
		if _, ok := validator.IsValidDate(*r.CompletionDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "completion_date",
				Message: "completion_date must be in YYYY-MM-DD format",
			})
		}
	}
	if len(r.Status) > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must not exceed 50 characters",
		})
	}
	if r.CompletionDate == nil && validator.IsEmpty(r.Status) && !r.IsOverdue {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status or completion_date is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PeriodInfo struct {
	Identifier string        `json:"identifier"`
	Window     period.Window `json:"window"`
	IsOverdue  bool          `json:"is_overdue"`
	IsCurrent  bool          `json:"is_current"`
	Completed  int           `json:"completed"`
}

type ListPeriodsResponse struct {
	ComplianceTypeID string       `json:"compliance_type_id"`
	Frequency        string       `json:"frequency"`
	Year             int          `json:"year"`
	Periods          []PeriodInfo `json:"periods"`
}

type ParsePeriodResponse struct {
	Identifier string        `json:"identifier"`
	Frequency  string        `json:"frequency"`
	Window     period.Window `json:"window"`
	IsOverdue  bool          `json:"is_overdue"`
}
