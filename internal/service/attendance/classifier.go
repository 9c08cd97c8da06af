package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
)

// Classify compares a day's punches against p. Either punch may be nil.
// Punches are compared at minute resolution: seconds are dropped, so 08:15:59
// against an 08:00 start with 15 minutes of tolerance is on time.
func Classify(checkIn, checkOut *time.Time, date time.Time, p policy.WorkHoursPolicy, loc *time.Location) attendance.Classification {
	var c attendance.Classification

	start := p.StartTime.On(date, loc)
	end := p.EndTime.On(date, loc)

	var in, out time.Time
	if checkIn != nil {
		in = checkIn.In(loc).Truncate(time.Minute)

		lateLimit := start.Add(time.Duration(p.LateThresholdMinutes) * time.Minute)
		if in.After(lateLimit) {
			c.IsLate = true
			c.LateMinutes = int(in.Sub(lateLimit) / time.Minute)
		}
	}

	if checkOut != nil {
		out = checkOut.In(loc).Truncate(time.Minute)

		earlyLimit := end.Add(-time.Duration(p.EarlyLeaveThresholdMinutes) * time.Minute)
		if out.Before(earlyLimit) {
			c.IsEarlyLeave = true
			c.EarlyLeaveMinutes = int(earlyLimit.Sub(out) / time.Minute)
		}

		if out.After(end) {
			c.OvertimeHours = out.Sub(end).Hours()
		}
	}

	if checkIn != nil && checkOut != nil {
		worked := out.Sub(in) - time.Duration(p.BreakDurationMinutes)*time.Minute
		if worked > 0 {
			c.WorkHours = worked.Hours()
		}
	}

	return c
}
