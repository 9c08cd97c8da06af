package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRepository_Versions(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPolicyRepository(setup.DB)

	seeded, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:00", seeded.StartTime.String())
	assert.Equal(t, "17:00", seeded.EndTime.String())

	before := time.Now().Add(-time.Second)

	next := policy.Default()
	next.StartTime = policy.TimeOfDay{Hour: 9}
	next.EndTime = policy.TimeOfDay{Hour: 18, Minute: 30}
	next.LateThresholdMinutes = 10
	stored, err := repo.Set(ctx, next)
	require.NoError(t, err)
	assert.NotEqual(t, seeded.ID, stored.ID)
	assert.Equal(t, "18:30", stored.EndTime.String())

	active, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, active.ID)
	assert.Equal(t, 10, active.LateThresholdMinutes)

	old, err := repo.GetEffectiveAt(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, old.ID)

	byID, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.StartTime, byID.StartTime)

	_, err = repo.GetByID(ctx, "0190a001-0000-7000-8000-0000000000ff")
	assert.ErrorIs(t, err, policy.ErrPolicyNotFound)

	_, err = repo.GetEffectiveAt(ctx, time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, policy.ErrPolicyNotFound)
}

func TestHolidayRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewHolidayRepository(setup.DB)

	_, err := setup.DB.Exec(ctx, `INSERT INTO holidays (date, name) VALUES ('2024-03-11', 'Nyepi'), ('2024-03-29', 'Good Friday'), ('2024-04-10', 'Eid al-Fitr')`)
	require.NoError(t, err)

	holidays, err := repo.ListBetween(ctx, day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.True(t, holidays[0].Date.Equal(day("2024-03-11")))
	assert.Equal(t, "Nyepi", holidays[0].Name)

	ok, err := repo.IsHoliday(ctx, day("2024-04-10"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsHoliday(ctx, day("2024-04-11"))
	require.NoError(t, err)
	assert.False(t, ok)
}
