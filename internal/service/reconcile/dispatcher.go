package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/google/uuid"
)

// SyncDispatcher runs requested reconciliations inline. It is used when no queue
// is configured.
type SyncDispatcher struct {
	svc     reconcile.ReconcileService
	loc     *time.Location
	now     func() time.Time
	timeout time.Duration
}

func NewSyncDispatcher(svc reconcile.ReconcileService, loc *time.Location, now func() time.Time, timeout time.Duration) reconcile.Dispatcher {
	if now == nil {
		now = time.Now
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SyncDispatcher{svc: svc, loc: loc, now: now, timeout: timeout}
}

// Request implements reconcile.Dispatcher.
func (d *SyncDispatcher) Request(ctx context.Context, date time.Time) (reconcile.RequestResponse, error) {
	if date.After(utils.DateOf(d.now(), d.loc)) {
		return reconcile.RequestResponse{}, reconcile.ErrFutureDate
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := d.svc.Run(runCtx, date)
	if err != nil {
		return reconcile.RequestResponse{}, fmt.Errorf("reconciliation failed: %w", err)
	}

	inserted := len(result.Inserted)
	return reconcile.RequestResponse{
		RequestID: uuid.Must(uuid.NewV7()).String(),
		Date:      utils.FormatDate(date),
		Status:    reconcile.RequestCompleted,
		Inserted:  &inserted,
		Skipped:   result.Skipped,
	}, nil
}
