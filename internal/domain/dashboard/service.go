package dashboard

import "context"

// DashboardService serves the read-only attendance views.
type DashboardService interface {
	// GetDailyStats returns present/late/absent counts for a date (YYYY-MM-DD, default today).
	GetDailyStats(ctx context.Context, date string) (AttendanceStatsResponse, error)

	// GetMonthlyCalendar returns the per-day status of one employee for a month (YYYY-MM, default current).
	GetMonthlyCalendar(ctx context.Context, employeeID string, month string) (MonthlyCalendarResponse, error)
}
