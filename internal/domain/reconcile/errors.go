package reconcile

import "errors"

var (
	ErrRosterFetchFailed = errors.New("failed to fetch employee roster")
	ErrLedgerFetchFailed = errors.New("failed to fetch attendance ledger")

	// ErrWriteConflict marks an absence that was not inserted because the
	// employee-day already had a record. It is reported, never propagated.
	ErrWriteConflict = errors.New("employee-day already has a record")

	ErrInvariantViolation = errors.New("absence coexists with a successful check-in")
	ErrFutureDate         = errors.New("cannot reconcile a future date")
)
