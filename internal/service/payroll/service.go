package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type Settings struct {
	Mode      payroll.WorkingDaysMode
	FixedDays int
}

// DefaultSettings keeps the historical 22-day month.
func DefaultSettings() Settings {
	return Settings{Mode: payroll.WorkingDaysFixed, FixedDays: payroll.DefaultFixedWorkingDays}
}

type PayrollServiceImpl struct {
	attendance.Ledger
	employee.RosterRepository
	workingDays calendar.WorkingDays
	settings    Settings
	loc         *time.Location
	now         func() time.Time
}

func NewPayrollService(
	ledger attendance.Ledger,
	rosterRepo employee.RosterRepository,
	workingDays calendar.WorkingDays,
	settings Settings,
	loc *time.Location,
	now func() time.Time,
) payroll.PayrollService {
	if settings.Mode == "" {
		settings.Mode = payroll.WorkingDaysFixed
	}
	if settings.FixedDays <= 0 {
		settings.FixedDays = payroll.DefaultFixedWorkingDays
	}
	if now == nil {
		now = time.Now
	}
	return &PayrollServiceImpl{
		Ledger:           ledger,
		RosterRepository: rosterRepo,
		workingDays:      workingDays,
		settings:         settings,
		loc:              loc,
		now:              now,
	}
}

// EstimateMonth implements payroll.PayrollService.
func (s *PayrollServiceImpl) EstimateMonth(ctx context.Context, employeeID string, month string) (payroll.EstimateResponse, error) {
	today := utils.DateOf(s.now(), s.loc)

	first, _ := utils.MonthBounds(today)
	if month != "" {
		m, ok := validator.IsValidMonth(month)
		if !ok {
			return payroll.EstimateResponse{}, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
		}
		first = m
	}
	_, last := utils.MonthBounds(first)

	var (
		emp         employee.Employee
		records     []attendance.Record
		workingDays = s.settings.FixedDays
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		emp, err = s.RosterRepository.GetByID(gCtx, employeeID)
		if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
			return fmt.Errorf("%w: %w", payroll.ErrEstimateUnavailable, err)
		}
		return err
	})

	g.Go(func() error {
		var err error
		records, err = s.Ledger.FetchAttendance(gCtx, first, last, &employeeID)
		if err != nil {
			return fmt.Errorf("%w: %w", payroll.ErrEstimateUnavailable, err)
		}
		return nil
	})

	if s.settings.Mode == payroll.WorkingDaysCalendar {
		g.Go(func() error {
			n, err := s.workingDays.CountInMonth(gCtx, first)
			if err != nil {
				return fmt.Errorf("%w: %w", payroll.ErrEstimateUnavailable, err)
			}
			workingDays = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return payroll.EstimateResponse{}, err
	}

	estimate, err := Estimate(emp.ID, first, emp.DailyRate, workingDays, s.settings.Mode, Summarize(records, today))
	if err != nil {
		return payroll.EstimateResponse{}, err
	}
	return payroll.ToResponse(estimate), nil
}
