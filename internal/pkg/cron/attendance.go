package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type AttendanceJobs struct {
	reconciler reconcile.ReconcileService
	loc        *time.Location
	now        func() time.Time
	lookback   int

	mu         sync.Mutex
	reconciled map[string]bool // past dates swept without error
}

func NewAttendanceJobs(reconciler reconcile.ReconcileService, loc *time.Location, lookbackDays int, now func() time.Time) *AttendanceJobs {
	if now == nil {
		now = time.Now
	}
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	return &AttendanceJobs{
		reconciler: reconciler,
		loc:        loc,
		now:        now,
		lookback:   lookbackDays,
		reconciled: make(map[string]bool),
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, sweepInterval, invariantInterval time.Duration) {
	scheduler.AddJob("reconcile_absences", sweepInterval, sweepInterval*5, j.SweepAbsences)
	scheduler.AddJob("check_attendance_invariants", invariantInterval, time.Minute, j.CheckInvariants)
}

// SweepAbsences reconciles today and the previous lookback days, oldest first.
// Past dates that finished cleanly are not revisited.
func (j *AttendanceJobs) SweepAbsences(ctx context.Context) error {
	today := utils.DateOf(j.now(), j.loc)

	j.mu.Lock()
	defer j.mu.Unlock()

	oldest := today.AddDate(0, 0, -j.lookback)
	for key := range j.reconciled {
		if d, err := utils.ParseDate(key); err == nil && d.Before(oldest) {
			delete(j.reconciled, key)
		}
	}

	var errs []error
	inserted := 0
	for day := oldest; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := utils.FormatDate(day)
		if j.reconciled[key] {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := j.reconciler.Run(ctx, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("reconcile %s: %w", key, err))
			continue
		}
		inserted += len(result.Inserted)
		if day.Before(today) {
			j.reconciled[key] = true
		}
	}

	if inserted > 0 {
		slog.Info("Cron: absences reconciled", "inserted", inserted, "today", utils.FormatDate(today))
	}
	return errors.Join(errs...)
}

// CheckInvariants audits the sweep window. Violations are logged by the reconciler.
func (j *AttendanceJobs) CheckInvariants(ctx context.Context) error {
	today := utils.DateOf(j.now(), j.loc)
	conflicts, err := j.reconciler.CheckInvariants(ctx, today.AddDate(0, 0, -j.lookback), today)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%d employee-days: %w", len(conflicts), reconcile.ErrInvariantViolation)
	}
	return nil
}
