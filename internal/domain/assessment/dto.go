package assessment

import (
	"encoding/json"
	"time"

	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/validator"
)

// Draft navigation actions
const (
	ActionNone     = ""
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionJumpTo   = "jump_to"
)

type SaveDraftRequest struct {
	Kind   FormKind        `json:"-"`
	Data   json.RawMessage `json:"data"`
	Action string          `json:"action,omitempty"`
	Step   int             `json:"step,omitempty"`
}

func (r *SaveDraftRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "form",
			Message: "form must be spot-check, competency-assessment or job-application",
		})
	}
	if len(r.Data) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "data",
			Message: "data is required",
		})
	}
	if !validator.IsInSlice(r.Action, []string{ActionNone, ActionNext, ActionPrevious, ActionJumpTo}) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be next, previous or jump_to",
		})
	}
	if r.Action == ActionJumpTo && r.Step < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "step",
			Message: "step is required for jump_to",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SubmitRequest struct {
	Kind FormKind `json:"-"`
	// Data overrides the saved draft when present.
	Data json.RawMessage `json:"data,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "form",
			Message: "form must be spot-check, competency-assessment or job-application",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StepState struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Complete bool   `json:"complete"`
}

type DraftResponse struct {
	FormKey     string          `json:"form_key"`
	CurrentStep int             `json:"current_step"`
	Steps       []StepState     `json:"steps"`
	CanSubmit   bool            `json:"can_submit"`
	Missing     []string        `json:"missing,omitempty"`
	Data        json.RawMessage `json:"data"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

type ApplicationResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Position    string    `json:"position"`
	BranchID    *string   `json:"branch_id,omitempty"`
	Status      string    `json:"status"`
	SubmittedBy string    `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewApplicationResponse(a Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		FullName:    a.FullName,
		Email:       a.Email,
		Position:    a.Position,
		BranchID:    a.BranchID,
		Status:      a.Status,
		SubmittedBy: a.SubmittedBy,
		CreatedAt:   a.CreatedAt,
	}
}

// SubmitResponse carries whatever the submitted form produced: a compliance
// record for assessments, a stored application for job applications.
type SubmitResponse struct {
	Form        FormKind                   `json:"form"`
	Record      *compliance.RecordResponse `json:"record,omitempty"`
	Application *ApplicationResponse       `json:"application,omitempty"`
}
