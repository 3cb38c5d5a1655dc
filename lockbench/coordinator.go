package lockbench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	logMsgRunStarted         = "run started"
	logMsgRunCompleted       = "run completed"
	logMsgWorkerFinished     = "worker finished"
	logMsgInvalidRunConfig   = "invalid run configuration"
	logMsgSpawnFailed        = "spawning workers failed"
	logMsgCounterFailed      = "shared counter failed"
	logMsgOperation          = "lockbench run: "
	logAttrError             = "error"
	logAttrRunID             = "run_id"
	logAttrThreadCount       = "thread_count"
	logAttrTerminationTarget = "termination_target"
	logAttrFinalCount        = "final_count"
	logAttrCompletions       = "worker_completions"
	logAttrSpawned           = "spawned_workers"
	logAttrWorkerID          = "worker_id"
	logAttrIterations        = "iterations"
	logAttrDurationMS        = "duration_ms"
)

// Coordinator owns the lifecycle of benchmark runs: it spawns workers that share one SharedCounter
// and joins all of them.
//
// A Coordinator holds configuration only, so it can execute any number of independent runs.
type Coordinator struct {
	logger            Logger
	contextualLogger  ContextualLogger
	metricsCollector  MetricsCollector
	tracingCollector  TracingCollector
	maxWorkers        int
	lockOSThread      bool
	workerDiagnostics bool
	newCounter        func(target int64) (*SharedCounter, error)
}

// workerHandle identifies a spawned worker. finished is written by the worker goroutine and only read
// after the errgroup was joined.
type workerHandle struct {
	worker   *Worker
	finished bool
}

// startGate holds spawned workers back until all of them exist, or releases them with abort.
type startGate struct {
	ch      chan struct{}
	aborted bool
}

func newStartGate() *startGate {
	return &startGate{ch: make(chan struct{})}
}

func (g *startGate) open() {
	close(g.ch)
}

func (g *startGate) abort() {
	g.aborted = true
	close(g.ch)
}

// wait blocks until the gate is opened or aborted and reports whether the worker may start.
func (g *startGate) wait() bool {
	<-g.ch
	return !g.aborted
}

// NewCoordinator creates a new Coordinator with optional configuration.
func NewCoordinator(options ...Option) (*Coordinator, error) {
	c := &Coordinator{newCounter: NewSharedCounter}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Run executes one benchmark run: threadCount workers race to increment a fresh SharedCounter
// until it reaches terminationTarget. Use Unbounded to run until the process is killed.
//
// Run returns only after every worker has terminated, so for an unbounded target it never returns
// unless the counter fails. The context is used for trace and log correlation, it does not cancel the run.
//
// If not all workers can be spawned, none of them touches the counter and ErrWorkerSpawnFailed is returned.
func (c *Coordinator) Run(ctx context.Context, threadCount int, terminationTarget int64) (RunReport, error) {
	if threadCount <= 0 {
		c.logConfigError(ctx, ErrInvalidThreadCount, threadCount, terminationTarget)
		return RunReport{}, ErrInvalidThreadCount
	}

	counter, counterErr := c.newCounter(terminationTarget)
	if counterErr != nil {
		c.logConfigError(ctx, counterErr, threadCount, terminationTarget)
		return RunReport{}, counterErr
	}

	runID := uuid.New()
	tracer, ctx := c.startRunTracing(ctx, runID, threadCount, terminationTarget)
	metrics := c.startRunMetrics(ctx)

	c.logOperation(ctx, logMsgRunStarted,
		logAttrRunID, runID.String(),
		logAttrThreadCount, threadCount,
		logAttrTerminationTarget, terminationTarget,
	)

	group, gate, handles, spawnErr := c.spawnWorkers(ctx, counter, threadCount, metrics)
	if spawnErr != nil {
		c.logError(ctx, logMsgSpawnFailed, spawnErr,
			logAttrRunID, runID.String(),
			logAttrThreadCount, threadCount,
			logAttrSpawned, len(handles),
		)
		metrics.recordError(errorTypeSpawn)
		tracer.finishError(errorTypeSpawn, 0)

		return RunReport{}, spawnErr
	}

	startedAt := time.Now()
	gate.open()
	_ = group.Wait() // workers never return errors, failures are recorded on the counter
	duration := time.Since(startedAt)

	if err := counter.Err(); err != nil {
		c.logError(ctx, logMsgCounterFailed, err, logAttrRunID, runID.String())
		metrics.recordError(errorTypeCounter)
		tracer.finishError(errorTypeCounter, duration)

		return RunReport{}, err
	}

	report := RunReport{
		RunID:             runID,
		ThreadCount:       threadCount,
		TerminationTarget: terminationTarget,
		FinalCount:        counter.Value(),
		WorkerCompletions: countCompletions(handles),
		StartedAt:         startedAt,
		Duration:          duration,
	}

	c.logOperation(ctx, logMsgRunCompleted,
		logAttrRunID, runID.String(),
		logAttrFinalCount, report.FinalCount,
		logAttrCompletions, report.WorkerCompletions,
		logAttrDurationMS, toMilliseconds(duration),
	)
	metrics.recordSuccess(report)
	tracer.finishSuccess(report)

	return report, nil
}

// spawnWorkers starts threadCount workers held back by a start gate.
// On the first failed spawn the gate is aborted and the already spawned workers are joined before returning.
func (c *Coordinator) spawnWorkers(
	ctx context.Context,
	counter *SharedCounter,
	threadCount int,
	metrics *runMetricsObserver,
) (*errgroup.Group, *startGate, []*workerHandle, error) {

	group := new(errgroup.Group)
	if c.maxWorkers > 0 {
		group.SetLimit(c.maxWorkers)
	}

	gate := newStartGate()
	handles := make([]*workerHandle, 0, threadCount)

	for id := 0; id < threadCount; id++ {
		handle := &workerHandle{worker: newWorker(id, counter, c.lockOSThread)}

		spawned := group.TryGo(func() error {
			c.runWorker(ctx, gate, handle, metrics)
			return nil
		})

		if !spawned {
			gate.abort()
			_ = group.Wait()

			return nil, nil, handles, errors.Join(
				ErrWorkerSpawnFailed,
				fmt.Errorf("spawned %d of %d workers, limit is %d", id, threadCount, c.maxWorkers),
			)
		}

		handles = append(handles, handle)
		metrics.recordWorkerSpawned()
	}

	return group, gate, handles, nil
}

// runWorker is the body of one worker goroutine.
func (c *Coordinator) runWorker(ctx context.Context, gate *startGate, handle *workerHandle, metrics *runMetricsObserver) {
	if !gate.wait() {
		return
	}

	iterations := handle.worker.Run()
	handle.finished = true
	metrics.recordWorkerCompleted()

	if c.workerDiagnostics {
		c.logDebug(ctx, logMsgWorkerFinished,
			logAttrWorkerID, handle.worker.ID(),
			logAttrIterations, iterations,
		)
	}
}

func (c *Coordinator) logConfigError(ctx context.Context, err error, threadCount int, terminationTarget int64) {
	c.logError(ctx, logMsgInvalidRunConfig, err,
		logAttrThreadCount, threadCount,
		logAttrTerminationTarget, terminationTarget,
	)
}

func countCompletions(handles []*workerHandle) int {
	completions := 0
	for _, handle := range handles {
		if handle.finished {
			completions++
		}
	}

	return completions
}
