package lockbench

import (
	"math"
	"sync"
)

// Outcome is the result of one SharedCounter.TryIncrement call.
type Outcome int

const (
	// Continue means the counter was incremented and the caller should try again.
	Continue Outcome = iota

	// Done means the termination target was reached (or the counter failed) and the caller should stop.
	Done
)

// String provides a string representation of Outcome for logging and debugging.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// SharedCounter is a signed counter guarded by a single mutex, shared by all workers of one run.
//
// The termination target is fixed at construction and read without synchronization.
// The counter value and the failure state are only read or written while holding mu.
type SharedCounter struct {
	mu     sync.Mutex
	value  int64
	err    error
	target int64
}

// NewSharedCounter creates a SharedCounter starting at 0.
// Use Unbounded as target for a counter that never reports Done on its own.
func NewSharedCounter(target int64) (*SharedCounter, error) {
	if target < Unbounded {
		return nil, ErrInvalidTerminationTarget
	}

	return &SharedCounter{target: target}, nil
}

// TryIncrement atomically checks the counter against the termination target and increments it
// if the target is not reached yet. It blocks while another goroutine holds the lock.
//
// Once the counter has failed (see Err) every call returns Done without mutating the value.
func (sc *SharedCounter) TryIncrement() Outcome {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.err != nil {
		return Done
	}

	if sc.target != Unbounded && sc.value >= sc.target {
		return Done
	}

	if sc.value == math.MaxInt64 {
		sc.err = ErrCounterOverflow
		return Done
	}

	sc.value++

	return Continue
}

// Value returns the current counter value.
func (sc *SharedCounter) Value() int64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.value
}

// Err returns the failure recorded by the counter, or nil.
func (sc *SharedCounter) Err() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.err
}

// Target returns the termination target, Unbounded for counters without one.
func (sc *SharedCounter) Target() int64 {
	return sc.target
}

// Bounded reports whether the counter stops at a termination target.
func (sc *SharedCounter) Bounded() bool {
	return sc.target != Unbounded
}
