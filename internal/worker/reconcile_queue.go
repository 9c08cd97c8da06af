package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	QueueReconcile = "jobs:reconcile"

	jobTypeReconcile = "reconcile"
	pendingKeyPrefix = "reconcile:pending:"
)

// Job is the envelope pushed onto the queue.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type ReconcilePayload struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func pendingKey(date string) string {
	return pendingKeyPrefix + date
}

// Dispatcher enqueues reconciliation requests into Redis. Requests for a date
// that is already pending collapse into the pending one.
type Dispatcher struct {
	rdb         *redis.Client
	loc         *time.Location
	now         func() time.Time
	dedupWindow time.Duration
}

func NewDispatcher(rdb *redis.Client, loc *time.Location, now func() time.Time, dedupWindow time.Duration) reconcile.Dispatcher {
	if now == nil {
		now = time.Now
	}
	if dedupWindow <= 0 {
		dedupWindow = 2 * time.Minute
	}
	return &Dispatcher{rdb: rdb, loc: loc, now: now, dedupWindow: dedupWindow}
}

// Request implements reconcile.Dispatcher.
func (d *Dispatcher) Request(ctx context.Context, date time.Time) (reconcile.RequestResponse, error) {
	if date.After(utils.DateOf(d.now(), d.loc)) {
		return reconcile.RequestResponse{}, reconcile.ErrFutureDate
	}
	day := utils.FormatDate(date)

	job, err := newReconcileJob(day, d.now())
	if err != nil {
		return reconcile.RequestResponse{}, err
	}

	fresh, err := d.rdb.SetNX(ctx, pendingKey(day), job.ID, d.dedupWindow).Result()
	if err != nil {
		return reconcile.RequestResponse{}, fmt.Errorf("failed to reserve reconciliation request: %w", err)
	}
	if !fresh {
		existing, err := d.rdb.Get(ctx, pendingKey(day)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return reconcile.RequestResponse{}, fmt.Errorf("failed to read pending request: %w", err)
		}
		return reconcile.RequestResponse{RequestID: existing, Date: day, Status: reconcile.RequestDuplicate}, nil
	}

	encoded, err := json.Marshal(job)
	if err != nil {
		return reconcile.RequestResponse{}, err
	}
	if err := d.rdb.LPush(ctx, QueueReconcile, encoded).Err(); err != nil {
		d.rdb.Del(ctx, pendingKey(day))
		return reconcile.RequestResponse{}, fmt.Errorf("failed to enqueue reconciliation: %w", err)
	}

	slog.Info("reconciliation requested", "request_id", job.ID, "date", day)
	return reconcile.RequestResponse{RequestID: job.ID, Date: day, Status: reconcile.RequestQueued}, nil
}

func newReconcileJob(date string, now time.Time) (Job, error) {
	payload, err := json.Marshal(ReconcilePayload{Date: date})
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Type:       jobTypeReconcile,
		Payload:    payload,
		EnqueuedAt: now.UTC(),
	}, nil
}

// Pool consumes the reconciliation queue with a fixed number of goroutines.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
type Pool struct {
	rdb        *redis.Client
	reconciler reconcile.ReconcileService
	workers    int
	jobTimeout time.Duration
	wg         sync.WaitGroup
}

func NewPool(rdb *redis.Client, reconciler reconcile.ReconcileService, workers int, jobTimeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if jobTimeout <= 0 {
		jobTimeout = time.Minute
	}
	return &Pool{rdb: rdb, reconciler: reconciler, workers: workers, jobTimeout: jobTimeout}
}

// Start launches the workers. They exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	slog.Info("reconcile worker pool started", "workers", p.workers)
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			slog.Info("reconcile worker shutting down", "worker", id)
			return
		default:
		}

		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueReconcile).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				slog.Warn("reconcile queue pop failed", "worker", id, "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		date, err := p.handle(ctx, result[1])
		if date != "" {
			p.rdb.Del(context.WithoutCancel(ctx), pendingKey(date))
		}
		if err != nil {
			slog.Error("reconcile job failed", "worker", id, "date", date, "error", err)
		}
	}
}

// handle decodes one queued job and runs it. It returns the job's date whenever
// the payload could be decoded.
func (p *Pool) handle(ctx context.Context, raw string) (string, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return "", fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if job.Type != jobTypeReconcile {
		return "", fmt.Errorf("unknown job type %q", job.Type)
	}

	var payload ReconcilePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return "", fmt.Errorf("invalid job date %q: %w", payload.Date, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	result, err := p.reconciler.Run(runCtx, date)
	if err != nil {
		return payload.Date, err
	}

	slog.Info("reconcile job completed",
		"request_id", job.ID,
		"date", payload.Date,
		"inserted", len(result.Inserted),
		"skipped", result.Skipped,
		"queued_for", time.Since(job.EnqueuedAt).Round(time.Millisecond),
	)
	return payload.Date, nil
}
