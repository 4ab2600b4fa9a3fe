package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Allow while the breaker refuses traffic.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker trips after a run of consecutive failures, refuses calls
// until a cooldown passes, then admits a limited number of probes. The portal
// puts one in front of the Apps Script endpoint, which fails in bursts while
// a deployment is being republished or Google throttles it.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold   int
	cooldown    time.Duration
	probeBudget int

	state          CircuitState
	failures       int
	reopenAt       time.Time
	probesInFlight int
	probesPassed   int
	clock          func() time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration, probeBudget int) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	if probeBudget < 1 {
		probeBudget = 1
	}

	return &CircuitBreaker{
		threshold:   threshold,
		cooldown:    cooldown,
		probeBudget: probeBudget,
		state:       CircuitStateClosed,
		clock:       time.Now,
	}
}

// Allow reports whether a call may proceed. An open breaker whose cooldown
// has elapsed moves to half-open and admits up to probeBudget calls.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.clock().Before(b.reopenAt) {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.probesInFlight = 0
		b.probesPassed = 0
	}

	if b.state == CircuitStateHalfOpen {
		if b.probesInFlight >= b.probeBudget {
			return ErrCircuitOpen
		}
		b.probesInFlight++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		if b.probesInFlight > 0 {
			b.probesInFlight--
		}
		b.probesPassed++
		if b.probesPassed >= b.probeBudget && b.probesInFlight == 0 {
			b.state = CircuitStateClosed
			b.failures = 0
			b.reopenAt = time.Time{}
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.trip()
		}
	case CircuitStateHalfOpen:
		if b.probesInFlight > 0 {
			b.probesInFlight--
		}
		b.trip()
	case CircuitStateOpen:
		// A straggler failing while open pushes the cooldown out.
		b.reopenAt = b.clock().Add(b.cooldown)
	}
}

// State reports the effective state. An open breaker past its cooldown reads
// as half-open even before the next Allow.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && !b.clock().Before(b.reopenAt) {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.reopenAt = b.clock().Add(b.cooldown)
	b.probesInFlight = 0
	b.probesPassed = 0
}
