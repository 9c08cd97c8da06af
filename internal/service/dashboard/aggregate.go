package dashboard

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

// DailyStats counts successful check-ins, the late ones among them and absences on date.
func DailyStats(date time.Time, records []attendance.Record) dashboard.DailyStats {
	var stats dashboard.DailyStats
	for _, rec := range records {
		if !utils.SameDate(rec.Date, date) {
			continue
		}
		switch {
		case rec.IsSuccessCheckIn():
			stats.Present++
			if rec.IsLate {
				stats.Late++
			}
		case rec.IsAbsent():
			stats.Absent++
		}
	}
	return stats
}

// DayStatusOf summarises one employee-day. A successful check-in outranks an
// absence row; failed attempts alone leave the day without trace.
func DayStatusOf(records []attendance.Record) attendance.DayStatus {
	var in, out, absent bool
	for _, rec := range records {
		switch {
		case rec.IsSuccessCheckIn():
			in = true
		case rec.IsSuccessCheckOut():
			out = true
		case rec.IsAbsent():
			absent = true
		}
	}

	switch {
	case in && out:
		return attendance.DayStatusPresentComplete
	case in || out:
		return attendance.DayStatusPresentPartial
	case absent:
		return attendance.DayStatusAbsent
	default:
		return attendance.DayStatusNoTrace
	}
}

// MonthlyCalendar lays out every date of month for one employee.
// Weekends always read WEEKEND. A past working date with no record at all reads
// ABSENT even before the reconciler has written the row.
func MonthlyCalendar(employeeID string, month time.Time, records []attendance.Record, holidays []calendar.Holiday, today time.Time) dashboard.MonthlyCalendar {
	byDate := make(map[string][]attendance.Record)
	for _, rec := range records {
		if rec.EmployeeID != employeeID {
			continue
		}
		key := utils.FormatDate(rec.Date)
		byDate[key] = append(byDate[key], rec)
	}

	holidayNames := make(map[string]string, len(holidays))
	for _, h := range holidays {
		holidayNames[utils.FormatDate(h.Date)] = h.Name
	}

	first, last := utils.MonthBounds(month)
	cal := dashboard.MonthlyCalendar{
		EmployeeID: employeeID,
		Month:      first,
		Totals:     make(map[dashboard.CalendarStatus]int),
	}

	for _, day := range utils.DaysBetween(first, last) {
		key := utils.FormatDate(day)
		dayRecords := byDate[key]
		holidayName, isHoliday := holidayNames[key]

		cell := dashboard.CalendarDay{Date: day, HolidayName: holidayName}
		fillPunches(&cell, dayRecords)

		status := DayStatusOf(dayRecords)
		switch {
		case utils.IsWeekend(day):
			cell.Status = dashboard.CalendarWeekend
		case status == attendance.DayStatusPresentComplete:
			cell.Status = dashboard.CalendarComplete
		case status == attendance.DayStatusPresentPartial && cell.CheckIn != nil:
			cell.Status = dashboard.CalendarPartialIn
		case status == attendance.DayStatusPresentPartial:
			cell.Status = dashboard.CalendarPartialOut
		case status == attendance.DayStatusAbsent:
			cell.Status = dashboard.CalendarAbsent
		case isHoliday:
			cell.Status = dashboard.CalendarHoliday
		case day.Before(today) && len(dayRecords) == 0:
			cell.Status = dashboard.CalendarAbsent
		default:
			cell.Status = dashboard.CalendarNoData
		}

		cal.Days = append(cal.Days, cell)
		cal.Totals[cell.Status]++
	}
	return cal
}

func fillPunches(cell *dashboard.CalendarDay, records []attendance.Record) {
	for _, rec := range records {
		switch {
		case rec.IsSuccessCheckIn():
			ts := rec.Timestamp
			cell.CheckIn = &ts
			cell.IsLate = rec.IsLate
			cell.LateMinutes = rec.LateMinutes
		case rec.IsSuccessCheckOut():
			ts := rec.Timestamp
			cell.CheckOut = &ts
			cell.IsEarlyLeave = rec.IsEarlyLeave
			cell.EarlyLeaveMinutes = rec.EarlyLeaveMinutes
			cell.WorkHours = rec.WorkHours
		}
	}
}
