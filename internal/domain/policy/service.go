package policy

import (
	"context"
	"time"
)

// Provider resolves the policy a computation should run under.
type Provider interface {
	// Current returns the active version.
	Current(ctx context.Context) (WorkHoursPolicy, error)

	// EffectiveAt returns the version that was active at instant at.
	EffectiveAt(ctx context.Context, at time.Time) (WorkHoursPolicy, error)

	// ByID returns a specific version, used to re-classify with the snapshot a punch was stored under.
	ByID(ctx context.Context, id string) (WorkHoursPolicy, error)
}

type PolicyService interface {
	Provider

	GetPolicy(ctx context.Context) (PolicyResponse, error)
	SetPolicy(ctx context.Context, req SetPolicyRequest) (PolicyResponse, error)
}
