package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/domain/auth"
	"github.com/yuadm/first-step-greet/internal/domain/client"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/domain/employee"
	"github.com/yuadm/first-step-greet/internal/domain/master/branch"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/pkg/period"
	"github.com/yuadm/first-step-greet/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAccountInactive), errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is inactive")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrBranchAccessDenied), errors.Is(err, branch.ErrUnauthorizedAccess):
		Forbidden(w, "Branch access denied")

	// Master data errors
	case errors.Is(err, branch.ErrBranchNotFound):
		NotFound(w, "Branch not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, client.ErrClientNotFound):
		NotFound(w, "Client not found")

	// Compliance domain errors
	case errors.Is(err, compliance.ErrTypeNotFound):
		NotFound(w, "Compliance type not found")
	case errors.Is(err, compliance.ErrRecordNotFound):
		NotFound(w, "Compliance record not found")
	case errors.Is(err, compliance.ErrEntityNotFound):
		NotFound(w, "Entity not found for compliance target")
	case errors.Is(err, compliance.ErrTypeNameExists):
		Conflict(w, "Compliance type name already exists")
	case errors.Is(err, compliance.ErrTypeInactive):
		Conflict(w, "Compliance type is inactive")
	case errors.Is(err, compliance.ErrInvalidPeriod),
		errors.Is(err, period.ErrInvalidIdentifier),
		errors.Is(err, period.ErrUnknownFrequency):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, compliance.ErrInvalidEvidence):
		BadRequest(w, err.Error(), nil)

	// Assessment form errors
	case errors.Is(err, assessment.ErrUnknownForm):
		NotFound(w, "Unknown assessment form")
	case errors.Is(err, assessment.ErrDraftNotFound):
		NotFound(w, "Draft not found")
	case errors.Is(err, assessment.ErrInvalidFormData):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, assessment.ErrFormIncomplete):
		UnprocessableEntity(w, "Form has incomplete required steps")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
