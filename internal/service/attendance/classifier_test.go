package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/stretchr/testify/assert"
)

var jakarta = time.FixedZone("WIB", 7*3600)

func at(hhmmss string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", "2024-03-01 "+hhmmss, jakarta)
	if err != nil {
		panic(err)
	}
	return &t
}

var (
	day         = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	officeHours = policy.WorkHoursPolicy{
		ID:                         "policy-1",
		StartTime:                  policy.TimeOfDay{Hour: 8},
		EndTime:                    policy.TimeOfDay{Hour: 17},
		LateThresholdMinutes:       15,
		EarlyLeaveThresholdMinutes: 15,
		BreakDurationMinutes:       60,
	}
)

func TestClassify_Lateness(t *testing.T) {
	cases := []struct {
		name        string
		checkIn     string
		wantLate    bool
		wantMinutes int
	}{
		{"early arrival", "07:45:00", false, 0},
		{"inside tolerance", "08:14:00", false, 0},
		{"exactly at limit", "08:15:00", false, 0},
		{"seconds are ignored", "08:15:59", false, 0},
		{"one minute late", "08:16:00", true, 1},
		{"an hour late", "09:15:30", true, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(at(tc.checkIn), nil, day, officeHours, jakarta)
			assert.Equal(t, tc.wantLate, c.IsLate)
			assert.Equal(t, tc.wantMinutes, c.LateMinutes)
			assert.Zero(t, c.WorkHours)
		})
	}
}

func TestClassify_EarlyLeaveAndOvertime(t *testing.T) {
	c := Classify(at("08:00:00"), at("16:40:00"), day, officeHours, jakarta)
	assert.True(t, c.IsEarlyLeave)
	assert.Equal(t, 5, c.EarlyLeaveMinutes)
	assert.Zero(t, c.OvertimeHours)

	c = Classify(at("08:00:00"), at("16:45:00"), day, officeHours, jakarta)
	assert.False(t, c.IsEarlyLeave)

	c = Classify(at("08:00:00"), at("17:30:00"), day, officeHours, jakarta)
	assert.False(t, c.IsEarlyLeave)
	assert.InDelta(t, 0.5, c.OvertimeHours, 1e-9)
	assert.InDelta(t, 8.5, c.WorkHours, 1e-9)
}

func TestClassify_WorkHours(t *testing.T) {
	c := Classify(at("08:00:00"), at("17:00:00"), day, officeHours, jakarta)
	assert.InDelta(t, 8.0, c.WorkHours, 1e-9)

	// Shorter than the break: never negative.
	c = Classify(at("08:00:00"), at("08:30:00"), day, officeHours, jakarta)
	assert.Zero(t, c.WorkHours)

	// Check-out without check-in classifies only the leaving side.
	c = Classify(nil, at("17:00:00"), day, officeHours, jakarta)
	assert.Zero(t, c.WorkHours)
	assert.False(t, c.IsLate)
}

func TestClassify_UsesLocalWallClock(t *testing.T) {
	// 01:16 UTC is 08:16 in Jakarta.
	utc := time.Date(2024, 3, 1, 1, 16, 0, 0, time.UTC)
	c := Classify(&utc, nil, day, officeHours, jakarta)
	assert.True(t, c.IsLate)
	assert.Equal(t, 1, c.LateMinutes)
}
