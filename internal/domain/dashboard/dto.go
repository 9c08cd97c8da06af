package dashboard

import "time"

// ========== DAILY ATTENDANCE STATS ==========

// DailyStats counts one calendar date of the ledger.
// Present counts successful check-ins, Late is the subset of those flagged late.
type DailyStats struct {
	Present int64
	Late    int64
	Absent  int64
}

// AttendanceStatsResponse represents attendance statistics for a specific day
type AttendanceStatsResponse struct {
	Present       int64   `json:"present"`
	OnTime        int64   `json:"on_time"`
	Late          int64   `json:"late"`
	Absent        int64   `json:"absent"`
	Total         int64   `json:"total"`
	OnTimePercent float64 `json:"on_time_percent"`
	LatePercent   float64 `json:"late_percent"`
	AbsentPercent float64 `json:"absent_percent"`
	Date          string  `json:"date"` // Format: "YYYY-MM-DD"
}

// ========== MONTHLY CALENDAR ==========

type CalendarStatus string

const (
	CalendarWeekend    CalendarStatus = "WEEKEND"
	CalendarComplete   CalendarStatus = "COMPLETE"
	CalendarPartialIn  CalendarStatus = "PARTIAL_IN"
	CalendarPartialOut CalendarStatus = "PARTIAL_OUT"
	CalendarAbsent     CalendarStatus = "ABSENT"
	CalendarHoliday    CalendarStatus = "HOLIDAY"
	CalendarNoData     CalendarStatus = "NO_DATA"
)

// CalendarDay is one cell of an employee's monthly calendar.
type CalendarDay struct {
	Date              time.Time
	Status            CalendarStatus
	HolidayName       string
	CheckIn           *time.Time
	CheckOut          *time.Time
	IsLate            bool
	LateMinutes       int
	IsEarlyLeave      bool
	EarlyLeaveMinutes int
	WorkHours         float64
}

type MonthlyCalendar struct {
	EmployeeID string
	Month      time.Time
	Days       []CalendarDay
	Totals     map[CalendarStatus]int
}

type CalendarDayResponse struct {
	Date              string  `json:"date"`
	Status            string  `json:"status"`
	HolidayName       string  `json:"holiday_name,omitempty"`
	CheckIn           *string `json:"check_in,omitempty"`  // HH:MM local time
	CheckOut          *string `json:"check_out,omitempty"` // HH:MM local time
	IsLate            bool    `json:"is_late"`
	LateMinutes       int     `json:"late_minutes"`
	IsEarlyLeave      bool    `json:"is_early_leave"`
	EarlyLeaveMinutes int     `json:"early_leave_minutes"`
	WorkHours         string  `json:"work_hours"` // e.g. "8h 0m"
}

type MonthlyCalendarResponse struct {
	EmployeeID string                `json:"employee_id"`
	Month      string                `json:"month"` // Format: "YYYY-MM"
	Days       []CalendarDayResponse `json:"days"`
	Totals     map[string]int        `json:"totals"`
}
