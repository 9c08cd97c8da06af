package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/google/uuid"
)

// Policies keeps versions in insertion order; the last one is active.
type Policies struct {
	mu       sync.RWMutex
	versions []policy.WorkHoursPolicy

	// Err, when set, is returned by every read.
	Err error
}

func NewPolicies(versions ...policy.WorkHoursPolicy) *Policies {
	p := &Policies{}
	for _, v := range versions {
		if v.ID == "" {
			v.ID = uuid.Must(uuid.NewV7()).String()
		}
		p.versions = append(p.versions, v)
	}
	return p
}

func (p *Policies) Get(ctx context.Context) (policy.WorkHoursPolicy, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.Err != nil {
		return policy.WorkHoursPolicy{}, p.Err
	}
	if len(p.versions) == 0 {
		return policy.WorkHoursPolicy{}, policy.ErrPolicyNotFound
	}
	return p.versions[len(p.versions)-1], nil
}

func (p *Policies) GetEffectiveAt(ctx context.Context, at time.Time) (policy.WorkHoursPolicy, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.Err != nil {
		return policy.WorkHoursPolicy{}, p.Err
	}
	for i := len(p.versions) - 1; i >= 0; i-- {
		if !p.versions[i].UpdatedAt.After(at) {
			return p.versions[i], nil
		}
	}
	return policy.WorkHoursPolicy{}, policy.ErrPolicyNotFound
}

func (p *Policies) GetByID(ctx context.Context, id string) (policy.WorkHoursPolicy, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.Err != nil {
		return policy.WorkHoursPolicy{}, p.Err
	}
	for _, v := range p.versions {
		if v.ID == id {
			return v, nil
		}
	}
	return policy.WorkHoursPolicy{}, policy.ErrPolicyNotFound
}

func (p *Policies) Set(ctx context.Context, v policy.WorkHoursPolicy) (policy.WorkHoursPolicy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return policy.WorkHoursPolicy{}, p.Err
	}
	v.ID = uuid.Must(uuid.NewV7()).String()
	v.UpdatedAt = time.Now().UTC()
	p.versions = append(p.versions, v)
	return v, nil
}
