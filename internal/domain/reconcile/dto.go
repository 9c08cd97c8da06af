package reconcile

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// Result describes one reconciliation pass over a date.
type Result struct {
	Date     time.Time
	Skipped  string // reason the pass did nothing, empty when it ran
	Inserted []attendance.Record
}

type RequestReconciliation struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (r *RequestReconciliation) Validate() (time.Time, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
		return time.Time{}, errs
	}
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		return time.Time{}, errs
	}
	return date, nil
}

type RequestStatus string

const (
	RequestQueued    RequestStatus = "queued"
	RequestDuplicate RequestStatus = "duplicate"
	RequestCompleted RequestStatus = "completed"
)

type RequestResponse struct {
	RequestID string        `json:"request_id"`
	Date      string        `json:"date"`
	Status    RequestStatus `json:"status"`
	Inserted  *int          `json:"inserted,omitempty"` // only for synchronous runs
	Skipped   string        `json:"skipped,omitempty"`
}

type InvariantFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Validate parses the range, defaulting to the month of today up to today.
func (f InvariantFilter) Validate(today time.Time) (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	from, _ := utils.MonthBounds(today)
	to := today

	if f.StartDate != "" {
		d, ok := validator.IsValidDate(f.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
		from = d
	}
	if f.EndDate != "" {
		d, ok := validator.IsValidDate(f.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
		to = d
	}
	if len(errs) == 0 && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

type InvariantReport struct {
	StartDate  string                `json:"start_date"`
	EndDate    string                `json:"end_date"`
	Violations []attendance.Conflict `json:"violations"`
	Count      int                   `json:"count"`
}
