// Package models holds the rate limiting vocabulary shared by stores and middleware.
package models

import (
	"time"

	dErrors "crowdsale/pkg/domain-errors"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassWrite covers caller-authenticated state changes: purchases, refunds,
	// controller operations.
	ClassWrite EndpointClass = "write"
)

// Policy is the number of requests a caller may make per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

func NewPolicy(limit int, window time.Duration) (Policy, error) {
	if limit <= 0 {
		return Policy{}, dErrors.New(dErrors.CodeInvalidInput, "rate limit must be positive")
	}
	if window <= 0 {
		return Policy{}, dErrors.New(dErrors.CodeInvalidInput, "rate limit window must be positive")
	}
	return Policy{Limit: limit, Window: window}, nil
}

// RateLimitResult is the outcome of one admission check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until the next request may succeed; zero when allowed.
	RetryAfter int
}
