package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("connection refused")

func version(id string, startHour, endHour int, updatedAt time.Time) policy.WorkHoursPolicy {
	p := policy.Default()
	p.ID = id
	p.StartTime = policy.TimeOfDay{Hour: startHour}
	p.EndTime = policy.TimeOfDay{Hour: endHour}
	p.UpdatedAt = updatedAt
	return p
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestEffectiveAt_OutageServesCachedPolicy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)))
	svc := NewPolicyService(repo)

	p, err := svc.EffectiveAt(ctx, day(4))
	require.NoError(t, err)
	assert.Equal(t, "v1", p.ID)

	repo.Err = errStoreDown

	p, err = svc.EffectiveAt(ctx, day(4))
	require.NoError(t, err)
	assert.Equal(t, "v1", p.ID)

	p, err = svc.ByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", p.ID)
}

// A historical lookup must not leave an old version behind as the fallback.
func TestEffectiveAt_CachesActiveVersionNotHistorical(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)), version("v2", 9, 18, day(10)))
	svc := NewPolicyService(repo)

	p, err := svc.EffectiveAt(ctx, day(4))
	require.NoError(t, err)
	assert.Equal(t, "v1", p.ID)

	repo.Err = errStoreDown

	p, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", p.ID)
}

func TestProvider_OutageWithEmptyCache(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)))
	repo.Err = errStoreDown
	svc := NewPolicyService(repo)

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, policy.ErrConfigUnavailable)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.EffectiveAt(ctx, day(4))
	assert.ErrorIs(t, err, policy.ErrConfigUnavailable)

	_, err = svc.ByID(ctx, "v1")
	assert.ErrorIs(t, err, policy.ErrConfigUnavailable)

	_, err = svc.GetPolicy(ctx)
	assert.ErrorIs(t, err, policy.ErrConfigUnavailable)
}

func TestEffectiveAt_BeforeFirstVersionUsesCurrent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)), version("v2", 9, 18, day(10)))
	svc := NewPolicyService(repo)

	p, err := svc.EffectiveAt(ctx, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "v2", p.ID)

	p, err = svc.EffectiveAt(ctx, day(12))
	require.NoError(t, err)
	assert.Equal(t, "v2", p.ID)
}

func TestByID_UnknownVersionUsesCurrent(t *testing.T) {
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)))
	svc := NewPolicyService(repo)

	p, err := svc.ByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, "v1", p.ID)
}

func TestSetPolicy_RefreshesCache(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)))
	svc := NewPolicyService(repo)

	_, err := svc.Current(ctx)
	require.NoError(t, err)

	saved, err := svc.SetPolicy(ctx, policy.SetPolicyRequest{
		StartTime:                  "07:30",
		EndTime:                    "16:30",
		LateThresholdMinutes:       10,
		EarlyLeaveThresholdMinutes: 10,
		BreakDurationMinutes:       45,
	})
	require.NoError(t, err)
	assert.Equal(t, "07:30", saved.StartTime)

	repo.Err = errStoreDown

	p, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, p.ID)
	assert.Equal(t, 45, p.BreakDurationMinutes)
}

func TestSetPolicy_RejectsInvalidShift(t *testing.T) {
	repo := memory.NewPolicies(version("v1", 8, 17, day(1)))
	svc := NewPolicyService(repo)

	_, err := svc.SetPolicy(context.Background(), policy.SetPolicyRequest{StartTime: "17:00", EndTime: "08:00"})
	assert.Error(t, err)

	p, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", p.ID)
}
