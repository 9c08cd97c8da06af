package payroll

import "context"

type PayrollService interface {
	// EstimateMonth projects the pay of employeeID for month (YYYY-MM, default current).
	EstimateMonth(ctx context.Context, employeeID string, month string) (EstimateResponse, error)
}
