package services

import (
	"errors"
	"sync"
	"time"

	"finance-ledger/internal/models"
)

// ErrCircuitBreakerOpen is returned instead of calling a provider that has
// failed repeatedly
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
	// OnStateChange is called with the lock released after every transition
	OnStateChange func(from, to models.CircuitBreakerState)
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 1,
	}
}

const (
	StateClosed models.CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker guards the suggestion provider. Open rejects calls until
// ResetTimeout has passed since the last failure, then one probe is let
// through in half-open.
type CircuitBreaker struct {
	mu                sync.Mutex
	config            CircuitBreakerConfig
	state             models.CircuitBreakerState
	failures          int
	halfOpenSuccesses int
	openedAt          time.Time
	now               func() time.Time
}

func NewCircuitBreaker(config CircuitBreakerConfig) CircuitBreakerInterface {
	return newCircuitBreaker(config)
}

func newCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	config.MaxFailures = max(config.MaxFailures, 1)
	config.HalfOpenMaxSucc = max(config.HalfOpenMaxSucc, 1)
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	var from models.CircuitBreakerState
	changed := false
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) > cb.config.ResetTimeout {
		from, changed = cb.moveTo(StateHalfOpen)
	}
	open := cb.state == StateOpen
	cb.mu.Unlock()

	if changed {
		cb.notify(from, StateHalfOpen)
	}
	return open
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.update(func() {
		switch cb.state {
		case StateHalfOpen:
			cb.halfOpenSuccesses++
			if cb.halfOpenSuccesses >= cb.config.HalfOpenMaxSucc {
				cb.moveTo(StateClosed)
			}
		case StateClosed:
			cb.failures = 0
		}
	})
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.update(func() {
		switch cb.state {
		case StateHalfOpen:
			cb.moveTo(StateOpen)
		case StateClosed:
			cb.failures++
			if cb.failures >= cb.config.MaxFailures {
				cb.moveTo(StateOpen)
			}
		}
	})
}

func (cb *CircuitBreaker) Reset() {
	cb.update(func() { cb.moveTo(StateClosed) })
}

func (cb *CircuitBreaker) GetState() models.CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// update runs fn under the lock and reports a resulting transition after
// releasing it
func (cb *CircuitBreaker) update(fn func()) {
	cb.mu.Lock()
	from := cb.state
	fn()
	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

// moveTo sets the state and the counters that belong to it; callers hold mu
func (cb *CircuitBreaker) moveTo(to models.CircuitBreakerState) (models.CircuitBreakerState, bool) {
	from := cb.state
	cb.state = to
	cb.halfOpenSuccesses = 0
	switch to {
	case StateOpen:
		cb.openedAt = cb.now()
	case StateClosed:
		cb.failures = 0
	}
	return from, from != to
}

func (cb *CircuitBreaker) notify(from, to models.CircuitBreakerState) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}
