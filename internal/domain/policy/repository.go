package policy

import (
	"context"
	"time"
)

// PolicyRepository stores versioned work hours policies.
type PolicyRepository interface {
	// Get returns the active (latest) version.
	Get(ctx context.Context) (WorkHoursPolicy, error)

	// GetEffectiveAt returns the version that was active at instant at.
	GetEffectiveAt(ctx context.Context, at time.Time) (WorkHoursPolicy, error)

	// GetByID returns a specific version.
	GetByID(ctx context.Context, id string) (WorkHoursPolicy, error)

	// Set inserts a new version and returns it with its id and timestamp filled in.
	Set(ctx context.Context, p WorkHoursPolicy) (WorkHoursPolicy, error)
}
