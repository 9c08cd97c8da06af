package calendar

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListBetween returns holidays whose date lies in [from, to], ordered by date.
	ListBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)

	// IsHoliday reports whether date is a holiday.
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}
