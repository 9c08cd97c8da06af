package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	attendance.Ledger
	employee.RosterRepository
	workingDays calendar.WorkingDays
	loc         *time.Location
	now         func() time.Time
}

func NewDashboardService(
	ledger attendance.Ledger,
	rosterRepo employee.RosterRepository,
	workingDays calendar.WorkingDays,
	loc *time.Location,
	now func() time.Time,
) dashboard.DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardServiceImpl{
		Ledger:           ledger,
		RosterRepository: rosterRepo,
		workingDays:      workingDays,
		loc:              loc,
		now:              now,
	}
}

// parseDate parses YYYY-MM-DD, defaults to today
func (s *DashboardServiceImpl) parseDate(date string) (time.Time, error) {
	if date == "" {
		return utils.DateOf(s.now(), s.loc), nil
	}
	d, ok := validator.IsValidDate(date)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}
	return d, nil
}

// parseMonth parses YYYY-MM format, defaults to current month
func (s *DashboardServiceImpl) parseMonth(month string) (time.Time, error) {
	if month == "" {
		first, _ := utils.MonthBounds(utils.DateOf(s.now(), s.loc))
		return first, nil
	}
	m, ok := validator.IsValidMonth(month)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}
	return m, nil
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// GetDailyStats implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetDailyStats(ctx context.Context, date string) (dashboard.AttendanceStatsResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return dashboard.AttendanceStatsResponse{}, err
	}

	records, err := s.Ledger.FetchAttendance(ctx, day, day, nil)
	if err != nil {
		return dashboard.AttendanceStatsResponse{}, fmt.Errorf("%w: %w", dashboard.ErrStatsUnavailable, err)
	}

	stats := DailyStats(day, records)
	onTime := stats.Present - stats.Late
	total := stats.Present + stats.Absent

	return dashboard.AttendanceStatsResponse{
		Present:       stats.Present,
		OnTime:        onTime,
		Late:          stats.Late,
		Absent:        stats.Absent,
		Total:         total,
		OnTimePercent: percent(onTime, total),
		LatePercent:   percent(stats.Late, total),
		AbsentPercent: percent(stats.Absent, total),
		Date:          utils.FormatDate(day),
	}, nil
}

// GetMonthlyCalendar implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetMonthlyCalendar(ctx context.Context, employeeID string, month string) (dashboard.MonthlyCalendarResponse, error) {
	first, err := s.parseMonth(month)
	if err != nil {
		return dashboard.MonthlyCalendarResponse{}, err
	}
	_, last := utils.MonthBounds(first)

	var (
		records  []attendance.Record
		holidays []calendar.Holiday
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := s.RosterRepository.GetByID(gCtx, employeeID)
		if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
			return fmt.Errorf("%w: %w", dashboard.ErrStatsUnavailable, err)
		}
		return err
	})

	g.Go(func() error {
		var err error
		records, err = s.Ledger.FetchAttendance(gCtx, first, last, &employeeID)
		if err != nil {
			return fmt.Errorf("%w: %w", dashboard.ErrStatsUnavailable, err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		holidays, err = s.workingDays.HolidaysInMonth(gCtx, first)
		if err != nil {
			return fmt.Errorf("%w: %w", dashboard.ErrStatsUnavailable, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.MonthlyCalendarResponse{}, err
	}

	cal := MonthlyCalendar(employeeID, first, records, holidays, utils.DateOf(s.now(), s.loc))
	return s.toCalendarResponse(cal), nil
}

func (s *DashboardServiceImpl) toCalendarResponse(cal dashboard.MonthlyCalendar) dashboard.MonthlyCalendarResponse {
	days := make([]dashboard.CalendarDayResponse, 0, len(cal.Days))
	for _, d := range cal.Days {
		days = append(days, dashboard.CalendarDayResponse{
			Date:              utils.FormatDate(d.Date),
			Status:            string(d.Status),
			HolidayName:       d.HolidayName,
			CheckIn:           s.clock(d.CheckIn),
			CheckOut:          s.clock(d.CheckOut),
			IsLate:            d.IsLate,
			LateMinutes:       d.LateMinutes,
			IsEarlyLeave:      d.IsEarlyLeave,
			EarlyLeaveMinutes: d.EarlyLeaveMinutes,
			WorkHours:         formatWorkHours(int64(math.Round(d.WorkHours * 60))),
		})
	}

	totals := make(map[string]int, len(cal.Totals))
	for status, n := range cal.Totals {
		totals[string(status)] = n
	}

	return dashboard.MonthlyCalendarResponse{
		EmployeeID: cal.EmployeeID,
		Month:      cal.Month.Format(utils.MonthLayout),
		Days:       days,
		Totals:     totals,
	}
}

// clock renders a timestamp as local HH:MM.
func (s *DashboardServiceImpl) clock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(s.loc).Format("15:04")
	return &formatted
}

func formatWorkHours(minutes int64) string {
	hours := minutes / 60
	mins := minutes % 60
	return fmt.Sprintf("%dh %dm", hours, mins)
}
