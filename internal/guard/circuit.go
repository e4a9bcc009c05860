package guard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker tracks failures per key (a Kafka topic for the outbox relay).
type CircuitBreaker struct {
	mu            sync.Mutex
	circuits      map[string]*circuit
	failThreshold int
	resetTimeout  time.Duration
	halfOpenMax   int
	now           func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	successes   int
	probes      int
	lastFailure time.Time
}

// NewCircuitBreaker opens a key's circuit after failThreshold consecutive
// failures and lets one probe through after resetTimeout.
func NewCircuitBreaker(failThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		circuits:      make(map[string]*circuit),
		failThreshold: failThreshold,
		resetTimeout:  resetTimeout,
		halfOpenMax:   1,
		now:           time.Now,
	}
}

// Check returns whether the circuit for key allows a call.
func (cb *CircuitBreaker) Check(key string) Result {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		cb.circuits[key] = &circuit{state: CircuitClosed}
		return Result{Allowed: true}
	}

	switch c.state {
	case CircuitOpen:
		since := cb.now().Sub(c.lastFailure)
		if since > cb.resetTimeout {
			c.state = CircuitHalfOpen
			c.successes = 0
			c.probes = 1
			return Result{Allowed: true}
		}
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("circuit open for %s, resets in %s", key, cb.resetTimeout-since),
			Guard:   "circuit_breaker",
		}
	case CircuitHalfOpen:
		if c.probes >= cb.halfOpenMax {
			return Result{
				Allowed: false,
				Reason:  "circuit half-open, max probes reached",
				Guard:   "circuit_breaker",
			}
		}
		c.probes++
		return Result{Allowed: true}
	default:
		return Result{Allowed: true}
	}
}

// State returns the current state for key.
func (cb *CircuitBreaker) State(key string) CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if c, ok := cb.circuits[key]; ok {
		return c.state
	}
	return CircuitClosed
}

// RecordSuccess marks a successful call for key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		return
	}

	switch c.state {
	case CircuitHalfOpen:
		c.successes++
		if c.successes >= cb.halfOpenMax {
			c.state = CircuitClosed
			c.failures = 0
			c.probes = 0
		}
	case CircuitClosed:
		c.failures = 0
	}
}

// RecordFailure marks a failed call for key. A failed half-open probe reopens
// the circuit immediately.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: CircuitClosed}
		cb.circuits[key] = c
	}

	c.failures++
	c.lastFailure = now

	if c.state == CircuitHalfOpen || c.failures >= cb.failThreshold {
		c.state = CircuitOpen
		c.probes = 0
	}
}

// Publisher matches the outbox relay's Kafka producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// ErrCircuitOpen is returned by BreakingPublisher while a topic's circuit is open.
type ErrCircuitOpen struct {
	Topic  string
	Reason string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("publish to %s skipped: %s", e.Topic, e.Reason)
}

// BreakingPublisher guards a Publisher with a per-topic circuit breaker so a
// dead topic is not retried on every poll.
type BreakingPublisher struct {
	next    Publisher
	breaker *CircuitBreaker
}

// NewBreakingPublisher wraps next with breaker.
func NewBreakingPublisher(next Publisher, breaker *CircuitBreaker) *BreakingPublisher {
	return &BreakingPublisher{next: next, breaker: breaker}
}

func (p *BreakingPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	if res := p.breaker.Check(topic); !res.Allowed {
		return &ErrCircuitOpen{Topic: topic, Reason: res.Reason}
	}
	if err := p.next.Publish(ctx, topic, key, value); err != nil {
		p.breaker.RecordFailure(topic)
		return err
	}
	p.breaker.RecordSuccess(topic)
	return nil
}
