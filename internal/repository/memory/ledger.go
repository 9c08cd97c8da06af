// Package memory holds in-process implementations of the engine's repositories.
// They back the service tests and mirror the guarantees of the PostgreSQL ledger.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/google/uuid"
)

type Ledger struct {
	mu      sync.Mutex
	records []attendance.Record

	// FetchErr, when set, is returned by FetchAttendance.
	FetchErr error
	// InsertErr maps employee ids to an error returned by InsertAbsenceIfMissing.
	InsertErr map[string]error
	// OnInsert runs before every absence insert attempt, outside the lock.
	OnInsert func(rec attendance.Record)
}

func NewLedger(records ...attendance.Record) *Ledger {
	l := &Ledger{}
	for _, rec := range records {
		l.records = append(l.records, l.withDefaults(rec))
	}
	return l
}

func (l *Ledger) withDefaults(rec attendance.Record) attendance.Record {
	if rec.ID == "" {
		rec.ID = uuid.Must(uuid.NewV7()).String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}

// Records returns a copy of everything stored.
func (l *Ledger) Records() []attendance.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]attendance.Record(nil), l.records...)
}

func (l *Ledger) dayLocked(employeeID string, date time.Time) []attendance.Record {
	var out []attendance.Record
	for _, rec := range l.records {
		if rec.EmployeeID == employeeID && utils.SameDate(rec.Date, date) {
			out = append(out, rec)
		}
	}
	return out
}

func (l *Ledger) FetchAttendance(ctx context.Context, from, to time.Time, employeeID *string) ([]attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.FetchErr != nil {
		return nil, l.FetchErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var out []attendance.Record
	for _, rec := range l.records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		if employeeID != nil && rec.EmployeeID != *employeeID {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (l *Ledger) InsertAbsenceIfMissing(ctx context.Context, rec attendance.Record) (bool, error) {
	if l.OnInsert != nil {
		l.OnInsert(rec)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err, ok := l.InsertErr[rec.EmployeeID]; ok {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.dayLocked(rec.EmployeeID, rec.Date)) > 0 {
		return false, nil
	}
	l.records = append(l.records, l.withDefaults(rec))
	return true, nil
}

func (l *Ledger) InsertPunch(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Record{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.Outcome == attendance.OutcomeSuccess {
		var hasAbsent, hasIn, hasOut bool
		for _, existing := range l.dayLocked(rec.EmployeeID, rec.Date) {
			hasAbsent = hasAbsent || existing.IsAbsent()
			hasIn = hasIn || existing.IsSuccessCheckIn()
			hasOut = hasOut || existing.IsSuccessCheckOut()
		}
		switch rec.Type {
		case attendance.TypeCheckIn:
			if hasAbsent {
				return attendance.Record{}, attendance.ErrAbsenceRecorded
			}
			if hasIn {
				return attendance.Record{}, attendance.ErrDuplicatePunch
			}
		case attendance.TypeCheckOut:
			if !hasIn {
				return attendance.Record{}, attendance.ErrCheckInRequired
			}
			if hasOut {
				return attendance.Record{}, attendance.ErrDuplicatePunch
			}
		}
	}

	rec = l.withDefaults(rec)
	l.records = append(l.records, rec)
	return rec, nil
}

func (l *Ledger) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []attendance.Record
	for _, rec := range l.records {
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Type != nil && *filter.Type != "" && string(rec.Type) != *filter.Type {
			continue
		}
		if filter.Date != nil && *filter.Date != "" && utils.FormatDate(rec.Date) != *filter.Date {
			continue
		}
		if filter.StartDate != nil && *filter.StartDate != "" && utils.FormatDate(rec.Date) < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && *filter.EndDate != "" && utils.FormatDate(rec.Date) > *filter.EndDate {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })

	total := int64(len(matched))
	start := min((filter.Page-1)*filter.Limit, len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (l *Ledger) FindAbsenceConflicts(ctx context.Context, from, to time.Time) ([]attendance.Conflict, error) {
	records, err := l.FetchAttendance(ctx, from, to, nil)
	if err != nil {
		return nil, err
	}

	type key struct {
		employeeID string
		date       string
	}
	absent := map[key]bool{}
	checkedIn := map[key]bool{}
	for _, rec := range records {
		k := key{rec.EmployeeID, utils.FormatDate(rec.Date)}
		if rec.IsAbsent() {
			absent[k] = true
		}
		if rec.IsSuccessCheckIn() {
			checkedIn[k] = true
		}
	}

	var conflicts []attendance.Conflict
	for k := range absent {
		if checkedIn[k] {
			date, _ := utils.ParseDate(k.date)
			conflicts = append(conflicts, attendance.Conflict{EmployeeID: k.employeeID, Date: date})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].Date.Equal(conflicts[j].Date) {
			return conflicts[i].Date.Before(conflicts[j].Date)
		}
		return conflicts[i].EmployeeID < conflicts[j].EmployeeID
	})
	return conflicts, nil
}
