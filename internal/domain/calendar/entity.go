package calendar

import "time"

// Holiday is a company-wide non-working date.
type Holiday struct {
	Date time.Time
	Name string
}
