package payroll

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// Summarize reduces an employee's records of one month to what the estimator needs.
// Only dates up to and including today count as present days.
func Summarize(records []attendance.Record, today time.Time) payroll.AttendanceSummary {
	summary := payroll.AttendanceSummary{TodayEarned: decimal.Zero}
	present := make(map[string]bool)

	for _, rec := range records {
		if !rec.IsSuccessCheckIn() || rec.Date.After(today) {
			continue
		}
		present[utils.FormatDate(rec.Date)] = true
		if utils.SameDate(rec.Date, today) {
			summary.TodayEarned = summary.TodayEarned.Add(rec.EarnedAmount)
		}
	}

	summary.PresentDays = len(present)
	return summary
}

// Estimate projects monthly pay from a daily rate:
//
//	expected = dailyRate * workingDays
//	earned   = dailyRate / workingDays * presentDays
//
// Amounts are rounded to two decimals.
func Estimate(employeeID string, month time.Time, dailyRate decimal.Decimal, workingDays int, mode payroll.WorkingDaysMode, summary payroll.AttendanceSummary) (payroll.Estimate, error) {
	if workingDays <= 0 {
		return payroll.Estimate{}, payroll.ErrNoWorkingDays
	}
	w := decimal.NewFromInt(int64(workingDays))

	return payroll.Estimate{
		EmployeeID:      employeeID,
		Month:           month.Format(utils.MonthLayout),
		DailyRate:       dailyRate,
		WorkingDays:     workingDays,
		PresentDays:     summary.PresentDays,
		ExpectedMonthly: dailyRate.Mul(w).Round(2),
		EarnedToDate:    dailyRate.Div(w).Mul(decimal.NewFromInt(int64(summary.PresentDays))).Round(2),
		TodayEarned:     summary.TodayEarned.Round(2),
		Mode:            mode,
	}, nil
}
