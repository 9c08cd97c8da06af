package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
)

type PolicyServiceImpl struct {
	policy.PolicyRepository

	mu            sync.RWMutex
	lastKnownGood *policy.WorkHoursPolicy
}

// remember caches p as the last policy successfully read from storage.
func (s *PolicyServiceImpl) remember(p policy.WorkHoursPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKnownGood = &p
}

// prime seeds the cache with the active version when nothing has been read yet.
// Historical versions are never cached: the fallback must be the active policy.
func (s *PolicyServiceImpl) prime(ctx context.Context) {
	s.mu.RLock()
	primed := s.lastKnownGood != nil
	s.mu.RUnlock()
	if primed {
		return
	}
	if p, err := s.PolicyRepository.Get(ctx); err == nil {
		s.remember(p)
	}
}

// fallback returns the cached policy, or ErrConfigUnavailable joined with cause.
func (s *PolicyServiceImpl) fallback(cause error) (policy.WorkHoursPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastKnownGood != nil {
		slog.Warn("policy store unavailable, using last known good policy", "policy_id", s.lastKnownGood.ID, "error", cause)
		return *s.lastKnownGood, nil
	}
	return policy.WorkHoursPolicy{}, fmt.Errorf("%w: %w", policy.ErrConfigUnavailable, cause)
}

// Current implements policy.Provider.
func (s *PolicyServiceImpl) Current(ctx context.Context) (policy.WorkHoursPolicy, error) {
	p, err := s.PolicyRepository.Get(ctx)
	if err != nil {
		return s.fallback(err)
	}
	s.remember(p)
	return p, nil
}

// EffectiveAt implements policy.Provider. Instants older than the first stored
// version resolve to the current policy.
func (s *PolicyServiceImpl) EffectiveAt(ctx context.Context, at time.Time) (policy.WorkHoursPolicy, error) {
	p, err := s.PolicyRepository.GetEffectiveAt(ctx, at)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return s.Current(ctx)
		}
		return s.fallback(err)
	}
	s.prime(ctx)
	return p, nil
}

// ByID implements policy.Provider.
func (s *PolicyServiceImpl) ByID(ctx context.Context, id string) (policy.WorkHoursPolicy, error) {
	p, err := s.PolicyRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return s.Current(ctx)
		}
		return s.fallback(err)
	}
	s.prime(ctx)
	return p, nil
}

// GetPolicy implements policy.PolicyService.
func (s *PolicyServiceImpl) GetPolicy(ctx context.Context) (policy.PolicyResponse, error) {
	p, err := s.Current(ctx)
	if err != nil {
		return policy.PolicyResponse{}, err
	}
	return policy.ToResponse(p), nil
}

// SetPolicy implements policy.PolicyService.
func (s *PolicyServiceImpl) SetPolicy(ctx context.Context, req policy.SetPolicyRequest) (policy.PolicyResponse, error) {
	p, err := req.Validate()
	if err != nil {
		return policy.PolicyResponse{}, err
	}

	saved, err := s.PolicyRepository.Set(ctx, p)
	if err != nil {
		return policy.PolicyResponse{}, fmt.Errorf("failed to save work hours policy: %w", err)
	}
	s.remember(saved)

	slog.Info("work hours policy updated", "policy_id", saved.ID, "start", saved.StartTime.String(), "end", saved.EndTime.String())
	return policy.ToResponse(saved), nil
}

func NewPolicyService(policyRepo policy.PolicyRepository) policy.PolicyService {
	return &PolicyServiceImpl{
		PolicyRepository: policyRepo,
	}
}
