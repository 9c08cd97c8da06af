package employee

import "context"

// RosterRepository is the read-only view of the employee directory used by the engine.
type RosterRepository interface {
	// FetchRoster returns every employee ordered by id.
	FetchRoster(ctx context.Context) ([]Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)
}
