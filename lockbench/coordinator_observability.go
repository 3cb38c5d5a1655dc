package lockbench

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	metricRunDuration         = "lockbench_run_duration_seconds"
	metricWorkersSpawned      = "lockbench_workers_spawned_total"
	metricWorkerCompletions   = "lockbench_worker_completions_total"
	metricFinalCount          = "lockbench_final_count"
	metricIncrementsPerSecond = "lockbench_increments_per_second"
	metricRunErrors           = "lockbench_run_errors_total"

	spanNameRun = "lockbench.run"

	spanAttrRunID             = "run_id"
	spanAttrThreadCount       = "thread_count"
	spanAttrTerminationTarget = "termination_target"
	spanAttrFinalCount        = "final_count"
	spanAttrCompletions       = "worker_completions"
	spanAttrDurationMS        = "duration_ms"
	spanAttrErrorType         = "error_type"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	operationRun = "run"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeSpawn   = "spawn_failed"
	errorTypeCounter = "counter_failed"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// formatMilliseconds formats a duration as milliseconds for span attributes.
func formatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Nanoseconds())/1e6)
}

// === Logging ===

// logOperation logs run lifecycle information at info level to every configured logger.
func (c *Coordinator) logOperation(ctx context.Context, action string, args ...any) {
	if c.logger != nil {
		c.logger.Info(logMsgOperation+action, args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logDebug logs diagnostics at debug level to every configured logger.
func (c *Coordinator) logDebug(ctx context.Context, message string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(message, args...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, message, args...)
	}
}

// logError logs error information at the error level to every configured logger.
func (c *Coordinator) logError(ctx context.Context, message string, err error, args ...any) {
	if c.logger == nil && c.contextualLogger == nil {
		return
	}

	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.logger != nil {
		c.logger.Error(message, allArgs...)
	}

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// === Tracing Observer ===

// runTracingObserver encapsulates the tracing span lifecycle of one run.
type runTracingObserver struct {
	c    *Coordinator
	span SpanContext
}

// startRunTracing starts the run span if the tracing collector is configured.
func (c *Coordinator) startRunTracing(
	ctx context.Context,
	runID uuid.UUID,
	threadCount int,
	terminationTarget int64,
) (*runTracingObserver, context.Context) {

	observer := &runTracingObserver{c: c}

	if c.tracingCollector == nil {
		return observer, ctx
	}

	attrs := map[string]string{
		spanAttrRunID:             runID.String(),
		spanAttrThreadCount:       strconv.Itoa(threadCount),
		spanAttrTerminationTarget: strconv.FormatInt(terminationTarget, 10),
	}

	newCtx, span := c.tracingCollector.StartSpan(ctx, spanNameRun, attrs)
	observer.span = span

	return observer, newCtx
}

// finishSuccess completes the run span with the run's results.
func (rto *runTracingObserver) finishSuccess(report RunReport) {
	if rto.span == nil {
		return
	}

	rto.span.SetStatus(statusSuccess)
	rto.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(report.Duration))

	rto.c.tracingCollector.FinishSpan(rto.span, statusSuccess, map[string]string{
		spanAttrFinalCount:  strconv.FormatInt(report.FinalCount, 10),
		spanAttrCompletions: strconv.Itoa(report.WorkerCompletions),
	})
}

// finishError completes the run span with error details.
func (rto *runTracingObserver) finishError(errorType string, duration time.Duration) {
	if rto.span == nil {
		return
	}

	rto.span.SetStatus(statusError)
	rto.span.AddAttribute(spanAttrErrorType, errorType)

	if duration > 0 {
		rto.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
	}

	rto.c.tracingCollector.FinishSpan(rto.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// === Metrics Observer ===

// runMetricsObserver encapsulates the metrics collection of one run.
// Its worker methods are called concurrently from worker goroutines, the collector must be safe for that.
type runMetricsObserver struct {
	c   *Coordinator
	ctx context.Context
}

// startRunMetrics creates a new metrics observer for one run.
func (c *Coordinator) startRunMetrics(ctx context.Context) *runMetricsObserver {
	return &runMetricsObserver{c: c, ctx: ctx}
}

func (rmo *runMetricsObserver) labels(status string) map[string]string {
	return map[string]string{
		labelOperation: operationRun,
		labelStatus:    status,
	}
}

// recordWorkerSpawned counts one spawned worker.
func (rmo *runMetricsObserver) recordWorkerSpawned() {
	rmo.incrementCounter(metricWorkersSpawned, rmo.labels(statusSuccess))
}

// recordWorkerCompleted counts one worker that observed Done.
func (rmo *runMetricsObserver) recordWorkerCompleted() {
	rmo.incrementCounter(metricWorkerCompletions, rmo.labels(statusSuccess))
}

// recordSuccess records all metrics for a completed run.
func (rmo *runMetricsObserver) recordSuccess(report RunReport) {
	rmo.recordDuration(metricRunDuration, report.Duration, rmo.labels(statusSuccess))
	rmo.recordValue(metricFinalCount, float64(report.FinalCount), rmo.labels(statusSuccess))
	rmo.recordValue(metricIncrementsPerSecond, report.IncrementsPerSecond(), rmo.labels(statusSuccess))
}

// recordError records a failed run.
func (rmo *runMetricsObserver) recordError(errorType string) {
	labels := rmo.labels(statusError)
	labels[labelErrorType] = errorType

	rmo.incrementCounter(metricRunErrors, labels)
}

func (rmo *runMetricsObserver) recordDuration(metric string, duration time.Duration, labels map[string]string) {
	if rmo.c.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rmo.c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(rmo.ctx, metric, duration, labels)
	} else {
		rmo.c.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (rmo *runMetricsObserver) incrementCounter(metric string, labels map[string]string) {
	if rmo.c.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rmo.c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(rmo.ctx, metric, labels)
	} else {
		rmo.c.metricsCollector.IncrementCounter(metric, labels)
	}
}

func (rmo *runMetricsObserver) recordValue(metric string, value float64, labels map[string]string) {
	if rmo.c.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rmo.c.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(rmo.ctx, metric, value, labels)
	} else {
		rmo.c.metricsCollector.RecordValue(metric, value, labels)
	}
}
