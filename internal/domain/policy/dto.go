package policy

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type SetPolicyRequest struct {
	StartTime                  string `json:"start_time"`
	EndTime                    string `json:"end_time"`
	LateThresholdMinutes       int    `json:"late_threshold_minutes"`
	EarlyLeaveThresholdMinutes int    `json:"early_leave_threshold_minutes"`
	BreakDurationMinutes       int    `json:"break_duration_minutes"`
}

// Validate checks the raw request and returns the parsed policy on success.
func (r SetPolicyRequest) Validate() (WorkHoursPolicy, error) {
	var errs validator.ValidationErrors

	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "must be in HH:MM format"})
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "must be in HH:MM format"})
	}
	if len(errs) > 0 {
		return WorkHoursPolicy{}, errs
	}

	p := WorkHoursPolicy{
		StartTime:                  start,
		EndTime:                    end,
		LateThresholdMinutes:       r.LateThresholdMinutes,
		EarlyLeaveThresholdMinutes: r.EarlyLeaveThresholdMinutes,
		BreakDurationMinutes:       r.BreakDurationMinutes,
	}
	if err := p.Validate(); err != nil {
		return WorkHoursPolicy{}, err
	}
	return p, nil
}

// Validate enforces the structural rules every stored version must satisfy.
func (p WorkHoursPolicy) Validate() error {
	var errs validator.ValidationErrors

	shift := p.EndTime.Minutes() - p.StartTime.Minutes()
	if shift <= 0 {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "must be after start_time"})
	}
	if p.LateThresholdMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "late_threshold_minutes", Message: "must not be negative"})
	}
	if p.EarlyLeaveThresholdMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "early_leave_threshold_minutes", Message: "must not be negative"})
	}
	if p.BreakDurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_duration_minutes", Message: "must not be negative"})
	} else if shift > 0 && p.BreakDurationMinutes >= shift {
		errs = append(errs, validator.ValidationError{Field: "break_duration_minutes", Message: "must be shorter than the working day"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PolicyResponse struct {
	ID                         string    `json:"id"`
	StartTime                  string    `json:"start_time"`
	EndTime                    string    `json:"end_time"`
	LateThresholdMinutes       int       `json:"late_threshold_minutes"`
	EarlyLeaveThresholdMinutes int       `json:"early_leave_threshold_minutes"`
	BreakDurationMinutes       int       `json:"break_duration_minutes"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

func ToResponse(p WorkHoursPolicy) PolicyResponse {
	return PolicyResponse{
		ID:                         p.ID,
		StartTime:                  p.StartTime.String(),
		EndTime:                    p.EndTime.String(),
		LateThresholdMinutes:       p.LateThresholdMinutes,
		EarlyLeaveThresholdMinutes: p.EarlyLeaveThresholdMinutes,
		BreakDurationMinutes:       p.BreakDurationMinutes,
		UpdatedAt:                  p.UpdatedAt,
	}
}
