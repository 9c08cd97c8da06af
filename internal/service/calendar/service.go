package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type WorkingDaysImpl struct {
	calendar.HolidayRepository
}

// IsWorkingDay implements calendar.WorkingDays.
func (w *WorkingDaysImpl) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	if utils.IsWeekend(date) {
		return false, nil
	}
	holiday, err := w.HolidayRepository.IsHoliday(ctx, date)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return !holiday, nil
}

// HolidaysInMonth implements calendar.WorkingDays.
func (w *WorkingDaysImpl) HolidaysInMonth(ctx context.Context, month time.Time) ([]calendar.Holiday, error) {
	first, last := utils.MonthBounds(month)
	holidays, err := w.HolidayRepository.ListBetween(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

// CountInMonth implements calendar.WorkingDays.
func (w *WorkingDaysImpl) CountInMonth(ctx context.Context, month time.Time) (int, error) {
	holidays, err := w.HolidaysInMonth(ctx, month)
	if err != nil {
		return 0, err
	}
	first, last := utils.MonthBounds(month)
	return CountWorkingDays(first, last, holidays), nil
}

// CountWorkingDays counts weekdays in [from, to] that are not holidays.
func CountWorkingDays(from, to time.Time, holidays []calendar.Holiday) int {
	off := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		off[utils.FormatDate(h.Date)] = true
	}

	count := 0
	for _, day := range utils.DaysBetween(from, to) {
		if !utils.IsWeekend(day) && !off[utils.FormatDate(day)] {
			count++
		}
	}
	return count
}

func NewWorkingDays(holidayRepo calendar.HolidayRepository) calendar.WorkingDays {
	return &WorkingDaysImpl{HolidayRepository: holidayRepo}
}
