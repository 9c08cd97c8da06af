package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultGrace        = 30 * time.Minute
	DefaultFetchTimeout = 10 * time.Second
)

type Options struct {
	Location     *time.Location
	Grace        time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time
}

type ReconcileServiceImpl struct {
	attendance.Ledger
	employee.RosterRepository
	policies    policy.Provider
	workingDays calendar.WorkingDays

	loc          *time.Location
	grace        time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
}

// Reconcile implements reconcile.ReconcileService.
//
// An employee-day gets an absence only when the day is a closed working day, the
// employee is active staff and the ledger holds no record of any kind for them.
// Candidates are written one by one; the ledger refuses to insert when a row
// already exists, so concurrent passes over the same date are safe.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, targetDate time.Time, p policy.WorkHoursPolicy, now time.Time) (reconcile.Result, error) {
	date := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, time.UTC)
	result := reconcile.Result{Date: date}

	today := utils.DateOf(now, s.loc)
	cutoff := p.Cutoff(date, s.grace, s.loc)
	switch {
	case date.After(today):
		result.Skipped = "future date"
		return result, nil
	case date.Equal(today) && now.Before(cutoff):
		result.Skipped = "day still open"
		return result, nil
	}

	working, err := s.workingDays.IsWorkingDay(ctx, date)
	if err != nil {
		return result, fmt.Errorf("failed to resolve working day: %w", err)
	}
	if !working {
		result.Skipped = "non-working day"
		return result, nil
	}

	roster, records, err := s.fetch(ctx, date)
	if err != nil {
		return result, err
	}

	traced := make(map[string]bool, len(records))
	for _, rec := range records {
		traced[rec.EmployeeID] = true
	}

	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	var candidates []employee.Employee
	for _, emp := range roster {
		if emp.Reconcilable() && !traced[emp.ID] {
			candidates = append(candidates, emp)
		}
	}

	var errs []error
	for _, emp := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		rec := attendance.Record{
			EmployeeID: emp.ID,
			Date:       date,
			Type:       attendance.TypeAbsent,
			Outcome:    attendance.OutcomeAbsent,
			Timestamp:  cutoff.UTC(),
			PolicyID:   policyID(p),
		}

		inserted, err := s.Ledger.InsertAbsenceIfMissing(ctx, rec)
		if err != nil && !errors.Is(err, reconcile.ErrWriteConflict) {
			errs = append(errs, fmt.Errorf("employee %s: %w", emp.ID, err))
			continue
		}
		if !inserted {
			slog.Debug("absence not inserted", "employee_id", emp.ID, "date", utils.FormatDate(date), "reason", reconcile.ErrWriteConflict)
			continue
		}
		result.Inserted = append(result.Inserted, rec)
	}

	slog.Info("reconciliation pass finished",
		"date", utils.FormatDate(date),
		"roster", len(roster),
		"candidates", len(candidates),
		"inserted", len(result.Inserted),
		"failed", len(errs),
	)
	return result, errors.Join(errs...)
}

// fetch loads the roster and the day's records concurrently.
// Either failure aborts the pass before anything is written.
func (s *ReconcileServiceImpl) fetch(ctx context.Context, date time.Time) ([]employee.Employee, []attendance.Record, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(fetchCtx)

	var roster []employee.Employee
	var records []attendance.Record

	g.Go(func() error {
		var err error
		roster, err = s.RosterRepository.FetchRoster(gctx)
		if err != nil {
			return fmt.Errorf("%w: %w", reconcile.ErrRosterFetchFailed, err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		records, err = s.Ledger.FetchAttendance(gctx, date, date, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", reconcile.ErrLedgerFetchFailed, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return roster, records, nil
}

func policyID(p policy.WorkHoursPolicy) *string {
	if p.ID == "" {
		return nil
	}
	id := p.ID
	return &id
}

// Run implements reconcile.ReconcileService. The day is judged under the policy
// version that was in force at its end.
func (s *ReconcileServiceImpl) Run(ctx context.Context, targetDate time.Time) (reconcile.Result, error) {
	endOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 23, 59, 59, 0, s.loc)
	p, err := s.policies.EffectiveAt(ctx, endOfDay)
	if err != nil {
		return reconcile.Result{Date: targetDate}, fmt.Errorf("failed to resolve work hours policy: %w", err)
	}

	result, err := s.Reconcile(ctx, targetDate, p, s.now())
	if err != nil {
		return result, err
	}

	if result.Skipped == "" {
		if _, err := s.CheckInvariants(ctx, result.Date, result.Date); err != nil {
			slog.Warn("invariant check failed", "date", utils.FormatDate(result.Date), "error", err)
		}
	}
	return result, nil
}

// CheckInvariants implements reconcile.ReconcileService. Violations are reported, never corrected.
func (s *ReconcileServiceImpl) CheckInvariants(ctx context.Context, from, to time.Time) ([]attendance.Conflict, error) {
	conflicts, err := s.Ledger.FindAbsenceConflicts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrLedgerFetchFailed, err)
	}

	for _, c := range conflicts {
		slog.Error("attendance invariant violated",
			"employee_id", c.EmployeeID,
			"date", utils.FormatDate(c.Date),
			"error", reconcile.ErrInvariantViolation,
		)
	}
	return conflicts, nil
}

// GetInvariantReport implements reconcile.ReconcileService. The range defaults to
// the current month up to today.
func (s *ReconcileServiceImpl) GetInvariantReport(ctx context.Context, filter reconcile.InvariantFilter) (reconcile.InvariantReport, error) {
	from, to, err := filter.Validate(utils.DateOf(s.now(), s.loc))
	if err != nil {
		return reconcile.InvariantReport{}, err
	}

	conflicts, err := s.CheckInvariants(ctx, from, to)
	if err != nil {
		return reconcile.InvariantReport{}, err
	}
	if conflicts == nil {
		conflicts = []attendance.Conflict{}
	}

	return reconcile.InvariantReport{
		StartDate:  utils.FormatDate(from),
		EndDate:    utils.FormatDate(to),
		Violations: conflicts,
		Count:      len(conflicts),
	}, nil
}

func NewReconcileService(
	ledger attendance.Ledger,
	rosterRepo employee.RosterRepository,
	policies policy.Provider,
	workingDays calendar.WorkingDays,
	opts Options,
) reconcile.ReconcileService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReconcileServiceImpl{
		Ledger:           ledger,
		RosterRepository: rosterRepo,
		policies:         policies,
		workingDays:      workingDays,
		loc:              opts.Location,
		grace:            opts.Grace,
		fetchTimeout:     opts.FetchTimeout,
		now:              opts.Now,
	}
}
