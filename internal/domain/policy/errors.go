package policy

import "errors"

var (
	ErrPolicyNotFound    = errors.New("work hours policy not found")
	ErrConfigUnavailable = errors.New("work hours policy unavailable")
)
