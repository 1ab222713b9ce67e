// Package models holds the rate limiting types.
package models

import "time"

// EndpointClass groups routes that share a budget.
type EndpointClass string

const (
	// ClassAuth covers credential endpoints (signup, login, refresh).
	ClassAuth EndpointClass = "auth"
	// ClassLookup covers fan-out lookups that hit third parties (bpm,
	// lyrics, transcription).
	ClassLookup EndpointClass = "lookup"
	// ClassGeneral covers everything else.
	ClassGeneral EndpointClass = "general"
)

// Limit is the budget for one class.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits are per-key budgets; the key is the user ID when
// authenticated, the client IP otherwise.
func DefaultLimits() map[EndpointClass]Limit {
	return map[EndpointClass]Limit{
		ClassAuth:    {Requests: 10, Window: time.Minute},
		ClassLookup:  {Requests: 30, Window: time.Minute},
		ClassGeneral: {Requests: 120, Window: time.Minute},
	}
}

// Result is one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}
