package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

type PunchRequest struct {
	EmployeeID string   `json:"employee_id"`
	Type       string   `json:"type"`
	Outcome    string   `json:"outcome"`
	Timestamp  string   `json:"timestamp"` // RFC3339, defaults to server time
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`

	parsedTimestamp *time.Time
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsInSlice(r.Type, []string{string(TypeCheckIn), string(TypeCheckOut)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: check_in, check_out",
		})
	}

	if r.Outcome == "" {
		r.Outcome = string(OutcomeSuccess)
	}
	validOutcomes := []string{string(OutcomeSuccess), string(OutcomeFaceInvalid), string(OutcomeLocationInvalid)}
	if !validator.IsInSlice(r.Outcome, validOutcomes) {
		errs = append(errs, validator.ValidationError{
			Field:   "outcome",
			Message: "outcome must be one of: success, face_invalid, location_invalid",
		})
	}

	if r.Timestamp != "" {
		ts, ok := validator.IsValidDateTime(r.Timestamp)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be in RFC3339 format",
			})
		} else {
			r.parsedTimestamp = &ts
		}
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedTimestamp returns the validated timestamp, or nil when none was sent.
func (r *PunchRequest) ParsedTimestamp() *time.Time {
	return r.parsedTimestamp
}

// ========================================
// LISTING
// ========================================

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Type       *string `json:"type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Type != nil && *f.Type != "" {
		validTypes := []string{string(TypeCheckIn), string(TypeCheckOut), string(TypeAbsent)}
		if !validator.IsInSlice(*f.Type, validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must be one of: check_in, check_out, absent",
			})
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordResponse struct {
	ID                string   `json:"id"`
	EmployeeID        string   `json:"employee_id"`
	Date              string   `json:"date"`
	Type              string   `json:"type"`
	Outcome           string   `json:"outcome"`
	Timestamp         string   `json:"timestamp"`
	IsLate            bool     `json:"is_late"`
	LateMinutes       int      `json:"late_minutes"`
	IsEarlyLeave      bool     `json:"is_early_leave"`
	EarlyLeaveMinutes int      `json:"early_leave_minutes"`
	WorkHours         float64  `json:"work_hours"`
	OvertimeHours     float64  `json:"overtime_hours"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	PolicyID          *string  `json:"policy_id,omitempty"`
	EarnedAmount      string   `json:"earned_amount"`
}

type ListAttendanceResponse struct {
	TotalCount  int64            `json:"total_count"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	TotalPages  int              `json:"total_pages"`
	Showing     string           `json:"showing"`
	Attendances []RecordResponse `json:"attendances"`
}

func ToResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:                rec.ID,
		EmployeeID:        rec.EmployeeID,
		Date:              utils.FormatDate(rec.Date),
		Type:              string(rec.Type),
		Outcome:           string(rec.Outcome),
		Timestamp:         rec.Timestamp.Format(time.RFC3339),
		IsLate:            rec.IsLate,
		LateMinutes:       rec.LateMinutes,
		IsEarlyLeave:      rec.IsEarlyLeave,
		EarlyLeaveMinutes: rec.EarlyLeaveMinutes,
		WorkHours:         math.Round(rec.WorkHours*100) / 100,
		OvertimeHours:     math.Round(rec.OvertimeHours*100) / 100,
		Latitude:          rec.Latitude,
		Longitude:         rec.Longitude,
		PolicyID:          rec.PolicyID,
		EarnedAmount:      rec.EarnedAmount.StringFixed(2),
	}
}
