package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordType string

const (
	TypeCheckIn  RecordType = "check_in"
	TypeCheckOut RecordType = "check_out"
	TypeAbsent   RecordType = "absent"
)

type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeFaceInvalid     Outcome = "face_invalid"
	OutcomeLocationInvalid Outcome = "location_invalid"
	OutcomeAbsent          Outcome = "absent"
)

// Record is one row of the attendance ledger. Date is the calendar date in the
// company timezone, stored as midnight UTC.
type Record struct {
	ID                string
	EmployeeID        string
	Date              time.Time
	Type              RecordType
	Outcome           Outcome
	Timestamp         time.Time
	IsLate            bool
	LateMinutes       int
	IsEarlyLeave      bool
	EarlyLeaveMinutes int
	WorkHours         float64
	OvertimeHours     float64
	Latitude          *float64
	Longitude         *float64
	PolicyID          *string
	EarnedAmount      decimal.Decimal
	CreatedAt         time.Time
}

func (r Record) IsSuccessCheckIn() bool {
	return r.Type == TypeCheckIn && r.Outcome == OutcomeSuccess
}

func (r Record) IsSuccessCheckOut() bool {
	return r.Type == TypeCheckOut && r.Outcome == OutcomeSuccess
}

func (r Record) IsAbsent() bool {
	return r.Type == TypeAbsent
}

// Classification is the outcome of comparing a day's punches against a policy.
type Classification struct {
	IsLate            bool
	LateMinutes       int
	IsEarlyLeave      bool
	EarlyLeaveMinutes int
	WorkHours         float64
	OvertimeHours     float64
}

// DayStatus summarises one employee-day.
type DayStatus string

const (
	DayStatusNoTrace         DayStatus = "NO_TRACE"
	DayStatusPresentComplete DayStatus = "PRESENT_COMPLETE"
	DayStatusPresentPartial  DayStatus = "PRESENT_PARTIAL"
	DayStatusAbsent          DayStatus = "ABSENT"
)

// Conflict is an employee-day where an absence coexists with a successful check-in.
type Conflict struct {
	EmployeeID string    `json:"employee_id"`
	Date       time.Time `json:"date"`
}
