package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	mu   sync.Mutex
	runs []string
	err  error
}

func (f *fakeReconciler) Reconcile(ctx context.Context, targetDate time.Time, p policy.WorkHoursPolicy, now time.Time) (reconcile.Result, error) {
	return reconcile.Result{}, nil
}

func (f *fakeReconciler) Run(ctx context.Context, targetDate time.Time) (reconcile.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, utils.FormatDate(targetDate))
	return reconcile.Result{Date: targetDate, Inserted: []attendance.Record{{EmployeeID: "B"}}}, f.err
}

func (f *fakeReconciler) CheckInvariants(ctx context.Context, from, to time.Time) ([]attendance.Conflict, error) {
	return nil, nil
}

func (f *fakeReconciler) GetInvariantReport(ctx context.Context, filter reconcile.InvariantFilter) (reconcile.InvariantReport, error) {
	return reconcile.InvariantReport{}, nil
}

func (f *fakeReconciler) Runs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.runs...)
}

func encodeJob(t *testing.T, date string) string {
	job, err := newReconcileJob(date, time.Now())
	require.NoError(t, err)
	raw, err := json.Marshal(job)
	require.NoError(t, err)
	return string(raw)
}

func TestPool_Handle(t *testing.T) {
	rec := &fakeReconciler{}
	p := NewPool(nil, rec, 1, time.Second)

	date, err := p.handle(context.Background(), encodeJob(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", date)
	assert.Equal(t, []string{"2024-03-01"}, rec.Runs())

	rec.err = errors.New("roster down")
	date, err = p.handle(context.Background(), encodeJob(t, "2024-03-02"))
	assert.Error(t, err)
	assert.Equal(t, "2024-03-02", date)

	_, err = p.handle(context.Background(), "not json")
	assert.Error(t, err)

	_, err = p.handle(context.Background(), `{"id":"x","type":"email","payload":{}}`)
	assert.Error(t, err)

	_, err = p.handle(context.Background(), `{"id":"x","type":"reconcile","payload":{"date":"yesterday"}}`)
	assert.Error(t, err)
}

func redisTestClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	rdb, err := database.NewRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestDispatcher_Redis(t *testing.T) {
	rdb := redisTestClient(t)
	ctx := context.Background()
	require.NoError(t, rdb.Del(ctx, QueueReconcile, pendingKey("2024-03-01")).Err())

	now := func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) }
	d := NewDispatcher(rdb, time.UTC, now, time.Minute)

	first, err := d.Request(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, reconcile.RequestQueued, first.Status)

	second, err := d.Request(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, reconcile.RequestDuplicate, second.Status)
	assert.Equal(t, first.RequestID, second.RequestID)

	_, err = d.Request(ctx, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, reconcile.ErrFutureDate)

	rec := &fakeReconciler{}
	workerCtx, cancel := context.WithCancel(ctx)
	pool := NewPool(rdb, rec, 2, time.Second)
	pool.Start(workerCtx)

	assert.Eventually(t, func() bool { return len(rec.Runs()) == 1 }, 10*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		n, err := rdb.Exists(ctx, pendingKey("2024-03-01")).Result()
		return err == nil && n == 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	pool.Wait()
}
