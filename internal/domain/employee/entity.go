package employee

import (
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	FullName         string
	Role             Role
	EmploymentStatus EmploymentStatus
	DailyRate        decimal.Decimal
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// Reconcilable reports whether the employee is expected to attend on working days.
// Admin accounts and inactive employees are never marked absent.
func (e Employee) Reconcilable() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.Role != RoleAdmin
}
