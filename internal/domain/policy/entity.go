package policy

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

// TimeOfDay is a wall-clock time without a date, at minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On anchors the time of day to date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return utils.At(date, t.Hour, t.Minute, loc)
}

// WorkHoursPolicy is one version of the company working-hours configuration.
// The most recently inserted version is the active one.
type WorkHoursPolicy struct {
	ID                         string
	StartTime                  TimeOfDay
	EndTime                    TimeOfDay
	LateThresholdMinutes       int
	EarlyLeaveThresholdMinutes int
	BreakDurationMinutes       int
	UpdatedAt                  time.Time
}

// Default mirrors the out-of-the-box office schedule: 08:00-17:00, 15 minutes of
// tolerance on both ends and a one hour break.
func Default() WorkHoursPolicy {
	return WorkHoursPolicy{
		StartTime:                  TimeOfDay{Hour: 8},
		EndTime:                    TimeOfDay{Hour: 17},
		LateThresholdMinutes:       15,
		EarlyLeaveThresholdMinutes: 15,
		BreakDurationMinutes:       60,
	}
}

// Cutoff is the instant after which a working day is considered closed for date.
func (p WorkHoursPolicy) Cutoff(date time.Time, grace time.Duration, loc *time.Location) time.Time {
	return p.EndTime.On(date, loc).Add(grace)
}
