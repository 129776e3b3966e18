// Package circuit tracks consecutive failures of a dependency so callers can
// switch to a fallback while it is down.
package circuit

import "sync"

// Transition reports a state change caused by a recorded outcome.
type Transition int

const (
	Unchanged Transition = iota
	Opened
	Closed
)

// Breaker is a two-state circuit. It opens after FailureThreshold
// consecutive failures and closes after SuccessThreshold consecutive
// successes while open. Callers keep probing the primary while open.
type Breaker struct {
	mu               sync.Mutex
	name             string
	open             bool
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold defaults to 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Failure records a failed call and reports whether the fallback should
// serve it.
func (b *Breaker) Failure() (useFallback bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.successes = 0
	if b.open {
		return true, Unchanged
	}
	if b.failures >= b.failureThreshold {
		b.open = true
		return true, Opened
	}
	return false, Unchanged
}

// Success records a successful call.
func (b *Breaker) Success() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if !b.open {
		return Unchanged
	}
	b.successes++
	if b.successes >= b.successThreshold {
		b.open = false
		b.successes = 0
		return Closed
	}
	return Unchanged
}
