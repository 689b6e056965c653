package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var rateErr *timeentry.RateLimitError
	if errors.As(err, &rateErr) {
		TooManyRequests(w, rateErr.Error(), rateErr.Seconds())
		return
	}

	var radiusErr *timeentry.OutsideRadiusError
	if errors.As(err, &radiusErr) {
		BadRequest(w, radiusErr.Error(), map[string]string{
			"closest_location": radiusErr.ClosestName,
			"distance_meters":  fmt.Sprintf("%.0f", radiusErr.ClosestMeters),
			"radius_meters":    fmt.Sprintf("%.0f", radiusErr.RadiusMeters),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrMissingClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Punch validation errors
	case errors.Is(err, timeentry.ErrJustificationRequired):
		JustificationRequired(w, err.Error())
	case errors.Is(err, timeentry.ErrKioskUnauthorized):
		Unauthorized(w, err.Error())
	case errors.Is(err, timeentry.ErrKioskPermissionDenied):
		Forbidden(w, err.Error())
	case errors.Is(err, timeentry.ErrNoMatchingLocation),
		errors.Is(err, timeentry.ErrLocationUnavailable),
		errors.Is(err, timeentry.ErrFutureTimestamp):
		BadRequest(w, err.Error(), nil)

	// Time entry domain errors
	case errors.Is(err, timeentry.ErrEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, timeentry.ErrEntryAlreadyProcessed):
		Conflict(w, "Time entry already processed")
	case errors.Is(err, timeentry.ErrIdempotencyConflict):
		Conflict(w, err.Error())
	case errors.Is(err, timeentry.ErrCertificateNotEditable):
		Conflict(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is inactive")
	case errors.Is(err, employee.ErrCannotDeleteSelf):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered in this company")

	// Company domain errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Kiosk domain errors
	case errors.Is(err, kiosk.ErrKioskNotFound):
		NotFound(w, "Kiosk not found")
	case errors.Is(err, kiosk.ErrKioskForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, kiosk.ErrKioskNameConflict):
		Conflict(w, err.Error())

	// Report domain errors
	case errors.Is(err, report.ErrInvalidFormat):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
