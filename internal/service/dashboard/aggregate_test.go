package dashboard

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*3600)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func punch(employeeID, day, hhmm string, typ attendance.RecordType, outcome attendance.Outcome) attendance.Record {
	ts, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hhmm, jakarta)
	if err != nil {
		panic(err)
	}
	return attendance.Record{EmployeeID: employeeID, Date: date(day), Type: typ, Outcome: outcome, Timestamp: ts.UTC()}
}

func absent(employeeID, day string) attendance.Record {
	return punch(employeeID, day, "17:30", attendance.TypeAbsent, attendance.OutcomeAbsent)
}

func TestDailyStats_ReconciledScenario(t *testing.T) {
	records := []attendance.Record{
		punch("A", "2024-03-01", "08:10", attendance.TypeCheckIn, attendance.OutcomeSuccess),
		absent("B", "2024-03-01"),
	}

	stats := DailyStats(date("2024-03-01"), records)
	assert.Equal(t, dashboard.DailyStats{Present: 1, Late: 0, Absent: 1}, stats)
}

func TestDailyStats_CountsOnlySuccessfulCheckIns(t *testing.T) {
	late := punch("A", "2024-03-01", "08:40", attendance.TypeCheckIn, attendance.OutcomeSuccess)
	late.IsLate = true
	late.LateMinutes = 25

	records := []attendance.Record{
		late,
		punch("A", "2024-03-01", "17:00", attendance.TypeCheckOut, attendance.OutcomeSuccess),
		punch("B", "2024-03-01", "08:00", attendance.TypeCheckIn, attendance.OutcomeFaceInvalid),
		punch("B", "2024-03-01", "08:02", attendance.TypeCheckIn, attendance.OutcomeSuccess),
		absent("C", "2024-03-01"),
		absent("C", "2024-02-29"),
	}

	stats := DailyStats(date("2024-03-01"), records)
	assert.Equal(t, int64(2), stats.Present)
	assert.Equal(t, int64(1), stats.Late)
	assert.Equal(t, int64(1), stats.Absent)
}

func TestDayStatusOf(t *testing.T) {
	in := punch("A", "2024-03-01", "08:00", attendance.TypeCheckIn, attendance.OutcomeSuccess)
	out := punch("A", "2024-03-01", "17:00", attendance.TypeCheckOut, attendance.OutcomeSuccess)
	failed := punch("A", "2024-03-01", "07:59", attendance.TypeCheckIn, attendance.OutcomeLocationInvalid)

	assert.Equal(t, attendance.DayStatusNoTrace, DayStatusOf(nil))
	assert.Equal(t, attendance.DayStatusNoTrace, DayStatusOf([]attendance.Record{failed}))
	assert.Equal(t, attendance.DayStatusPresentPartial, DayStatusOf([]attendance.Record{failed, in}))
	assert.Equal(t, attendance.DayStatusPresentComplete, DayStatusOf([]attendance.Record{in, out}))
	assert.Equal(t, attendance.DayStatusAbsent, DayStatusOf([]attendance.Record{absent("A", "2024-03-01")}))
	assert.Equal(t, attendance.DayStatusPresentPartial, DayStatusOf([]attendance.Record{absent("A", "2024-03-01"), in}))
}

func TestMonthlyCalendar(t *testing.T) {
	records := []attendance.Record{
		punch("A", "2024-03-01", "08:00", attendance.TypeCheckIn, attendance.OutcomeSuccess),
		punch("A", "2024-03-01", "17:05", attendance.TypeCheckOut, attendance.OutcomeSuccess),
		punch("A", "2024-03-04", "08:00", attendance.TypeCheckIn, attendance.OutcomeSuccess),
		absent("A", "2024-03-05"),
		punch("A", "2024-03-06", "08:00", attendance.TypeCheckIn, attendance.OutcomeFaceInvalid),
		// Weekend punches never change the weekend cell.
		punch("A", "2024-03-09", "09:00", attendance.TypeCheckIn, attendance.OutcomeSuccess),
		// Someone else's records are ignored.
		absent("B", "2024-03-01"),
	}
	holidays := []calendar.Holiday{{Date: date("2024-03-11"), Name: "Nyepi"}}
	today := date("2024-03-13")

	cal := MonthlyCalendar("A", date("2024-03-15"), records, holidays, today)
	require.Len(t, cal.Days, 31)
	assert.Equal(t, date("2024-03-01"), cal.Month)

	status := func(day int) dashboard.CalendarStatus { return cal.Days[day-1].Status }

	assert.Equal(t, dashboard.CalendarComplete, status(1))
	assert.Equal(t, dashboard.CalendarWeekend, status(2))
	assert.Equal(t, dashboard.CalendarWeekend, status(3))
	assert.Equal(t, dashboard.CalendarPartialIn, status(4))
	assert.Equal(t, dashboard.CalendarAbsent, status(5))
	assert.Equal(t, dashboard.CalendarNoData, status(6)) // only a failed attempt
	assert.Equal(t, dashboard.CalendarAbsent, status(7)) // past, no trace
	assert.Equal(t, dashboard.CalendarWeekend, status(9))
	assert.Equal(t, dashboard.CalendarHoliday, status(11))
	assert.Equal(t, "Nyepi", cal.Days[10].HolidayName)
	assert.Equal(t, dashboard.CalendarAbsent, status(12))
	assert.Equal(t, dashboard.CalendarNoData, status(13)) // today
	assert.Equal(t, dashboard.CalendarNoData, status(20)) // future

	require.NotNil(t, cal.Days[0].CheckIn)
	require.NotNil(t, cal.Days[0].CheckOut)

	assert.Equal(t, 10, cal.Totals[dashboard.CalendarWeekend])
	assert.Equal(t, 1, cal.Totals[dashboard.CalendarComplete])
	assert.Equal(t, 1, cal.Totals[dashboard.CalendarHoliday])

	total := 0
	for _, n := range cal.Totals {
		total += n
	}
	assert.Equal(t, 31, total)
}

func TestMonthlyCalendar_PartialOut(t *testing.T) {
	records := []attendance.Record{
		punch("A", "2024-03-01", "17:00", attendance.TypeCheckOut, attendance.OutcomeSuccess),
	}
	cal := MonthlyCalendar("A", date("2024-03-01"), records, nil, date("2024-03-02"))
	assert.Equal(t, dashboard.CalendarPartialOut, cal.Days[0].Status)
}
