package attendance

import (
	"context"
	"time"
)

// Ledger is the single writer of attendance records.
type Ledger interface {
	// FetchAttendance returns every record whose calendar date lies in [from, to],
	// optionally narrowed to one employee.
	FetchAttendance(ctx context.Context, from, to time.Time, employeeID *string) ([]Record, error)

	// InsertAbsenceIfMissing inserts rec only if the employee has no record of any
	// type on rec.Date. The check and the insert are atomic per employee-day.
	// It returns false when a row already existed.
	InsertAbsenceIfMissing(ctx context.Context, rec Record) (bool, error)

	// InsertPunch stores a check_in or check_out. A successful check_in fails with
	// ErrAbsenceRecorded or ErrDuplicatePunch, a successful check_out with
	// ErrCheckInRequired or ErrDuplicatePunch.
	InsertPunch(ctx context.Context, rec Record) (Record, error)

	// List returns a page of records plus the total count matching filter.
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// FindAbsenceConflicts lists employee-days in [from, to] where an absent row
	// coexists with a successful check_in.
	FindAbsenceConflicts(ctx context.Context, from, to time.Time) ([]Conflict, error)
}
