package payroll

import "errors"

var (
	ErrNoWorkingDays       = errors.New("month has no working days")
	ErrEstimateUnavailable = errors.New("payroll estimate is temporarily unavailable")
)
