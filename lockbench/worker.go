package lockbench

import (
	"runtime"
)

// Worker drives repeated SharedCounter.TryIncrement calls until the counter reports Done.
type Worker struct {
	id           int
	counter      *SharedCounter
	lockOSThread bool
}

func newWorker(id int, counter *SharedCounter, lockOSThread bool) *Worker {
	return &Worker{
		id:           id,
		counter:      counter,
		lockOSThread: lockOSThread,
	}
}

// ID returns the worker's ordinal within its run.
func (w *Worker) ID() int {
	return w.id
}

// Run loops until the shared counter reports Done and returns how many increments this worker made.
// It never returns for an unbounded counter.
//
// The returned count is local to this worker and is not shared with any other worker.
func (w *Worker) Run() int64 {
	if w.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	var iterations int64

	for {
		if w.counter.TryIncrement() == Done {
			return iterations
		}

		iterations++
	}
}
