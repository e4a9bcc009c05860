// Package guard holds in-process protections for the API and the outbox relay:
// a per-user check-in rate limiter and a per-topic publish circuit breaker.
package guard

// Result reports whether a guarded call may proceed.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"` // which guard blocked
}
