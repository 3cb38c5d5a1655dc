package lockbench

import (
	"errors"
)

var (
	// ErrInvalidThreadCount is returned when fewer than one worker is requested.
	ErrInvalidThreadCount = errors.New("thread count must be > 0")

	// ErrInvalidTerminationTarget is returned when the termination target is below the Unbounded sentinel.
	ErrInvalidTerminationTarget = errors.New("termination target must be >= -1")

	// ErrInvalidMaxWorkers is returned when a negative worker ceiling is supplied to WithMaxWorkers.
	ErrInvalidMaxWorkers = errors.New("max workers must not be negative")

	// ErrWorkerSpawnFailed is returned when not every requested worker could be spawned.
	ErrWorkerSpawnFailed = errors.New("spawning worker failed")

	// ErrCounterOverflow is recorded by a SharedCounter that can not be incremented without wrapping.
	ErrCounterOverflow = errors.New("shared counter overflow")
)

// Unbounded is the termination target sentinel for runs that never stop on their own.
const Unbounded int64 = -1
