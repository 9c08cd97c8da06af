package calendar

import (
	"context"
	"time"
)

// WorkingDays answers which calendar dates employees are expected to attend.
type WorkingDays interface {
	// IsWorkingDay is false on weekends and holidays.
	IsWorkingDay(ctx context.Context, date time.Time) (bool, error)

	// CountInMonth returns the number of working days in the month containing date.
	CountInMonth(ctx context.Context, month time.Time) (int, error)

	// HolidaysInMonth returns the holidays of the month containing date.
	HolidaysInMonth(ctx context.Context, month time.Time) ([]Holiday, error)
}
