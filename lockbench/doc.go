// Package lockbench provides a mutex contention benchmark: a configurable number of workers race
// to increment one shared counter protected by a single sync.Mutex until the counter reaches a
// termination target, or forever.
//
// Key types:
//   - SharedCounter: the mutex-protected counter and its atomic TryIncrement operation
//   - Worker: calls TryIncrement until it reports Done
//   - Coordinator: spawns and joins the workers of a run
//   - RunReport: the summary of a completed run
//
// Guarantees:
//   - After a bounded run returns, the counter equals the termination target exactly
//   - Either all requested workers run or none of them touches the counter
//   - Per-worker iteration counts stay local to each worker
//
// Common usage pattern:
//
//	coordinator, err := lockbench.NewCoordinator(
//		lockbench.WithLogger(slog.Default()),
//		lockbench.WithWorkerDiagnostics(),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	report, err := coordinator.Run(ctx, 4, 1000)
//	if err != nil {
//		// handle error
//	}
//
//	fmt.Println(report.FinalCount) // 1000
//
// Observability is dependency-free: see Logger, ContextualLogger, MetricsCollector and
// TracingCollector. The oteladapters package implements them with OpenTelemetry.
package lockbench
