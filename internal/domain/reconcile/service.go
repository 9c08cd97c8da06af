package reconcile

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
)

// ReconcileService backfills absences and audits the ledger.
type ReconcileService interface {
	// Reconcile inserts absences for targetDate under policy p, using now as the clock.
	Reconcile(ctx context.Context, targetDate time.Time, p policy.WorkHoursPolicy, now time.Time) (Result, error)

	// Run resolves the policy effective for targetDate and reconciles it.
	Run(ctx context.Context, targetDate time.Time) (Result, error)

	// CheckInvariants reports employee-days where an absence coexists with a successful check-in.
	CheckInvariants(ctx context.Context, from, to time.Time) ([]attendance.Conflict, error)

	// GetInvariantReport runs CheckInvariants over the filter's range.
	GetInvariantReport(ctx context.Context, filter InvariantFilter) (InvariantReport, error)
}

// Dispatcher accepts "reconcile this date now" commands.
type Dispatcher interface {
	Request(ctx context.Context, date time.Time) (RequestResponse, error)
}
