// Package helper provides test doubles for the lockbench observability interfaces.
//
// It contains spies for metrics, tracing and contextual logging, and a slog.Handler
// that captures log records, so tests can assert on what a benchmark run reported.
package helper
