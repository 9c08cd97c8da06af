package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
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
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "Access to this employee is not allowed")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrDuplicatePunch):
		Conflict(w, "Punch already recorded for this day")
	case errors.Is(err, attendance.ErrAbsenceRecorded):
		Conflict(w, "Day has already been marked absent")
	case errors.Is(err, attendance.ErrCheckInRequired):
		BadRequest(w, "Check-in required before check-out", nil)
	case errors.Is(err, attendance.ErrInvalidPunchType):
		BadRequest(w, "Punch type must be check_in or check_out", nil)

	// Policy domain errors
	case errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, "Work hours policy not found")

	// Reconciliation errors
	case errors.Is(err, reconcile.ErrFutureDate):
		BadRequest(w, "Cannot reconcile a future date", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrNoWorkingDays):
		BadRequest(w, "Month has no working days", nil)

	// Read paths that depend on a backend which is down
	case errors.Is(err, policy.ErrConfigUnavailable),
		errors.Is(err, dashboard.ErrStatsUnavailable),
		errors.Is(err, payroll.ErrEstimateUnavailable),
		errors.Is(err, reconcile.ErrRosterFetchFailed),
		errors.Is(err, reconcile.ErrLedgerFetchFailed):
		slog.Error("dependency unavailable", "error", err)
		ServiceUnavailable(w, "Service temporarily unavailable, please retry")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
