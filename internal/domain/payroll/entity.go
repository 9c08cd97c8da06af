package payroll

import "github.com/shopspring/decimal"

type WorkingDaysMode string

const (
	// WorkingDaysFixed uses a constant number of working days per month.
	WorkingDaysFixed WorkingDaysMode = "fixed"
	// WorkingDaysCalendar counts weekdays minus holidays.
	WorkingDaysCalendar WorkingDaysMode = "calendar"
)

const DefaultFixedWorkingDays = 22

// AttendanceSummary is the slice of the ledger the estimator needs.
type AttendanceSummary struct {
	PresentDays int             // distinct dates with a successful check-in so far this month
	TodayEarned decimal.Decimal // sum of earned amounts of today's successful check-ins
}

// Estimate is a read-only projection of an employee's monthly pay.
type Estimate struct {
	EmployeeID      string
	Month           string
	DailyRate       decimal.Decimal
	WorkingDays     int
	PresentDays     int
	ExpectedMonthly decimal.Decimal
	EarnedToDate    decimal.Decimal
	TodayEarned     decimal.Decimal
	Mode            WorkingDaysMode
}
