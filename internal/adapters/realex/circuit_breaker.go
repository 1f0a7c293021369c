package realex

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState is the state of an endpoint's circuit breaker
type CircuitState int

const (
	StateClosed CircuitState = iota
	// StateHalfOpen admits a limited number of trial exchanges
	StateHalfOpen
	StateOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen rejects an exchange while the endpoint is considered down
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests rejects an exchange once every trial slot is taken
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// CircuitBreakerConfig configures one endpoint's breaker
type CircuitBreakerConfig struct {
	// MaxFailures consecutive transport failures open the circuit
	MaxFailures uint32
	// Timeout is the cool-down an open circuit waits before trial exchanges
	Timeout time.Duration
	// MaxRequestsHalfOpen bounds the concurrent trial exchanges
	MaxRequestsHalfOpen uint32
	// OnStateChange is called with the lock held; it must not call back into the breaker
	OnStateChange func(from, to CircuitState)
}

// DefaultCircuitBreakerConfig opens after 5 failures and retries one exchange after 30s
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:         5,
		Timeout:             30 * time.Second,
		MaxRequestsHalfOpen: 1,
	}
}

// CircuitBreaker guards one gateway endpoint. It only sheds load while the
// endpoint is failing; it never retries. Declines are gateway answers and
// never count as failures, only transport errors do.
type CircuitBreaker struct {
	mu        sync.RWMutex
	state     CircuitState
	failures  uint32
	trials    uint32
	changedAt time.Time
	config    CircuitBreakerConfig
	now       func() time.Time
}

// NewCircuitBreaker returns a closed breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:  StateClosed,
		config: config,
		now:    time.Now,
	}
	cb.changedAt = cb.now()
	return cb
}

// Call runs exchange if the circuit admits it. Cancellation by the caller's
// context is not counted as an endpoint failure.
func (cb *CircuitBreaker) Call(ctx context.Context, exchange func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := exchange()
	cb.record(ctx, err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if cb.now().Sub(cb.changedAt) <= cb.config.Timeout {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
	}

	if cb.trials >= cb.config.MaxRequestsHalfOpen {
		return ErrTooManyRequests
	}
	cb.trials++
	return nil
}

func (cb *CircuitBreaker) record(ctx context.Context, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch {
	case err == nil:
		if cb.state == StateHalfOpen {
			cb.transition(StateClosed)
		}
		cb.failures = 0
	case ctx.Err() != nil:
		if cb.state == StateHalfOpen && cb.trials > 0 {
			cb.trials--
		}
	default:
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.MaxFailures {
			cb.transition(StateOpen)
		}
	}
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to
	cb.changedAt = cb.now()
	cb.trials = 0
	if to != StateOpen {
		cb.failures = 0
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Failures returns the consecutive transport failures seen while closed
func (cb *CircuitBreaker) Failures() uint32 {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}

// Reset closes the circuit
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transition(StateClosed)
	cb.failures = 0
	cb.trials = 0
}
