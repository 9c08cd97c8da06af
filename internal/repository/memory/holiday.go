package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type Holidays struct {
	holidays []calendar.Holiday

	Err error
}

func NewHolidays(holidays ...calendar.Holiday) *Holidays {
	sorted := append([]calendar.Holiday(nil), holidays...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &Holidays{holidays: sorted}
}

func (h *Holidays) ListBetween(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	if h.Err != nil {
		return nil, h.Err
	}
	var out []calendar.Holiday
	for _, hol := range h.holidays {
		if !hol.Date.Before(from) && !hol.Date.After(to) {
			out = append(out, hol)
		}
	}
	return out, nil
}

func (h *Holidays) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	if h.Err != nil {
		return false, h.Err
	}
	for _, hol := range h.holidays {
		if utils.SameDate(hol.Date, date) {
			return true, nil
		}
	}
	return false, nil
}
