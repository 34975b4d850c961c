package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A failed action carries the toast shown to the user
	var failure *action.FailureError
	if errors.As(err, &failure) {
		BadGateway(w, failure.Toast.Message)
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrEmployeeIDRequired):
		BadRequest(w, "employee_id is required for this report", nil)
	case errors.Is(err, user.ErrProjectRequired):
		Forbidden(w, "Project name missing from token")

	// Report domain errors
	case errors.Is(err, report.ErrUnknownReport):
		NotFound(w, "Report not found")
	case errors.Is(err, report.ErrViewNotFound):
		NotFound(w, "View not found")
	case errors.Is(err, report.ErrRecordNotFound):
		NotFound(w, "Record not found")
	case errors.Is(err, report.ErrReportNotAllowed):
		Forbidden(w, "Report not available for this role")
	case errors.Is(err, report.ErrUnknownSortKey),
		errors.Is(err, report.ErrUnknownFilter),
		errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrInvalidMonth),
		errors.Is(err, report.ErrInvalidYear),
		errors.Is(err, export.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrMalformedResponse):
		BadGateway(w, "HR API returned an unexpected response")
	case errors.Is(err, report.ErrUpstreamFailed):
		BadGateway(w, "HR API request failed")
	case errors.Is(err, report.ErrArchiveDisabled):
		NotImplemented(w, "Export archive is not configured")

	// Action domain errors
	case errors.Is(err, action.ErrActionInFlight):
		Conflict(w, "Action already in progress for this record")
	case errors.Is(err, action.ErrActionNotSupported):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, action.ErrNotPermitted):
		Forbidden(w, "Role is not permitted to perform actions")
	case errors.Is(err, action.ErrAuditDisabled):
		NotImplemented(w, "Action history is not configured")
	case errors.Is(err, action.ErrActionFailed):
		BadGateway(w, action.FallbackErrorMessage)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
