package lockbench

// Option defines a functional option for configuring a Coordinator.
type Option func(*Coordinator) error

// WithLogger sets the logger for the Coordinator.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: per-worker diagnostics (local iteration counts), only with WithWorkerDiagnostics
// Info level: run start and completion with counts and durations
// Error level: spawn failures and counter failures.
func WithLogger(logger Logger) Option {
	return func(c *Coordinator) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Coordinator.
// It receives the same messages as the Logger, with the run context for trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(c *Coordinator) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Coordinator.
// The collector will receive run durations, spawned and completed worker counts, final counter values,
// throughput, and run errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(c *Coordinator) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Coordinator.
// One span is created per run.
func WithTracing(collector TracingCollector) Option {
	return func(c *Coordinator) error {
		c.tracingCollector = collector
		return nil
	}
}

// WithWorkerDiagnostics enables a debug log line per worker with the number of increments it made.
func WithWorkerDiagnostics() Option {
	return func(c *Coordinator) error {
		c.workerDiagnostics = true
		return nil
	}
}

// WithOSThreadPerWorker wires every worker goroutine to its own OS thread for the duration of the run.
func WithOSThreadPerWorker() Option {
	return func(c *Coordinator) error {
		c.lockOSThread = true
		return nil
	}
}

// WithMaxWorkers sets the maximum number of workers that can be alive at the same time.
// A run asking for more workers fails with ErrWorkerSpawnFailed before any increment happens.
// Zero means no ceiling.
func WithMaxWorkers(maxWorkers int) Option {
	return func(c *Coordinator) error {
		if maxWorkers < 0 {
			return ErrInvalidMaxWorkers
		}

		c.maxWorkers = maxWorkers

		return nil
	}
}
