package payroll

type EstimateResponse struct {
	EmployeeID      string `json:"employee_id"`
	Month           string `json:"month"`
	DailyRate       string `json:"daily_rate"`
	WorkingDays     int    `json:"working_days"`
	PresentDays     int    `json:"present_days"`
	ExpectedMonthly string `json:"expected_monthly"`
	EarnedToDate    string `json:"earned_to_date"`
	TodayEarned     string `json:"today_earned"`
	WorkingDaysMode string `json:"working_days_mode"`
}

func ToResponse(e Estimate) EstimateResponse {
	return EstimateResponse{
		EmployeeID:      e.EmployeeID,
		Month:           e.Month,
		DailyRate:       e.DailyRate.StringFixed(2),
		WorkingDays:     e.WorkingDays,
		PresentDays:     e.PresentDays,
		ExpectedMonthly: e.ExpectedMonthly.StringFixed(2),
		EarnedToDate:    e.EarnedToDate.StringFixed(2),
		TodayEarned:     e.TodayEarned.StringFixed(2),
		WorkingDaysMode: string(e.Mode),
	}
}
