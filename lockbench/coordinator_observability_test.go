package lockbench_test

import (
	"context"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lockbench/lockbench"
	"github.com/AntonStoeckl/lockbench/testutil/helper"
)

type ctxKey struct{}

func Test_Coordinator_Run_LogsLifecycleAtInfoLevel(t *testing.T) {
	logHandler := helper.NewTestLogHandler(false)
	coordinator := newCoordinator(t, lockbench.WithLogger(slog.New(logHandler)))

	report, err := coordinator.Run(context.Background(), 2, 100)
	require.NoError(t, err)

	assert.True(t, logHandler.HasMessage("lockbench run: run started"))
	assert.True(t, logHandler.HasMessage("lockbench run: run completed"))
	assert.Empty(t, logHandler.RecordsAt(slog.LevelDebug), "no worker diagnostics without the option")
	assert.Empty(t, logHandler.RecordsAt(slog.LevelWarn))
	assert.Empty(t, logHandler.RecordsAt(slog.LevelError))

	infos := logHandler.RecordsAt(slog.LevelInfo)
	require.Len(t, infos, 2)

	completed := infos[1]
	assert.Equal(t, report.RunID.String(), helper.RecordAttr(completed, "run_id").String())
	assert.Equal(t, int64(100), helper.RecordAttr(completed, "final_count").Int64())
	assert.Equal(t, int64(2), helper.RecordAttr(completed, "worker_completions").Int64())
}

func Test_Coordinator_Run_WorkerDiagnosticsSumToTheFinalCount(t *testing.T) {
	logHandler := helper.NewTestLogHandler(false)
	coordinator := newCoordinator(t,
		lockbench.WithLogger(slog.New(logHandler)),
		lockbench.WithWorkerDiagnostics(),
	)

	report, err := coordinator.Run(context.Background(), 6, 60_000)
	require.NoError(t, err)

	diagnostics := logHandler.RecordsAt(slog.LevelDebug)
	require.Len(t, diagnostics, 6)

	seenWorkers := make(map[int64]bool)
	var sum int64
	for _, record := range diagnostics {
		assert.Equal(t, "worker finished", record.Message)
		seenWorkers[helper.RecordAttr(record, "worker_id").Int64()] = true
		sum += helper.RecordAttr(record, "iterations").Int64()
	}

	assert.Len(t, seenWorkers, 6)
	assert.Equal(t, report.FinalCount, sum)
}

func Test_Coordinator_Run_ContextualLoggerReceivesTheRunContext(t *testing.T) {
	logger := helper.NewContextualLoggerSpy()
	coordinator := newCoordinator(t, lockbench.WithContextualLogger(logger), lockbench.WithWorkerDiagnostics())

	ctx := context.WithValue(context.Background(), ctxKey{}, "correlation")
	_, err := coordinator.Run(ctx, 3, 30)
	require.NoError(t, err)

	infos := logger.RecordsAt("info")
	require.Len(t, infos, 2)
	assert.Equal(t, "lockbench run: run started", infos[0].Message)
	assert.Equal(t, 3, infos[0].Attr("thread_count"))
	assert.Equal(t, int64(30), infos[0].Attr("termination_target"))

	for _, record := range logger.RecordsAt("info") {
		assert.Equal(t, "correlation", record.Context.Value(ctxKey{}))
	}

	assert.Len(t, logger.RecordsAt("debug"), 3)
}

func Test_Coordinator_Run_RecordsMetricsWithContext(t *testing.T) {
	metrics := helper.NewMetricsCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithMetrics(metrics))

	_, err := coordinator.Run(context.Background(), 4, 4000)
	require.NoError(t, err)

	assert.Equal(t, 4, metrics.Count("lockbench_workers_spawned_total"))
	assert.Equal(t, 4, metrics.Count("lockbench_worker_completions_total"))
	assert.Equal(t, 1, metrics.Count("lockbench_run_duration_seconds"))
	assert.Equal(t, 0, metrics.Count("lockbench_run_errors_total"))

	finalCount, found := metrics.LastValue("lockbench_final_count")
	require.True(t, found)
	assert.Equal(t, 4000.0, finalCount)

	throughput, found := metrics.LastValue("lockbench_increments_per_second")
	require.True(t, found)
	assert.Greater(t, throughput, 0.0)

	for _, record := range metrics.Records("lockbench_run_duration_seconds") {
		assert.NotNil(t, record.Context, "contextual collector must receive the run context")
		assert.Equal(t, "run", record.Labels["operation"])
		assert.Equal(t, "success", record.Labels["status"])
	}
}

func Test_Coordinator_Run_FallsBackToPlainMetricsCollector(t *testing.T) {
	spy := helper.NewMetricsCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithMetrics(helper.NewPlainMetricsCollectorSpy(spy)))

	_, err := coordinator.Run(context.Background(), 2, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, spy.Count("lockbench_worker_completions_total"))
	assert.Equal(t, 1, spy.Count("lockbench_run_duration_seconds"))

	for _, record := range spy.Records("lockbench_worker_completions_total") {
		assert.Nil(t, record.Context)
	}
}

func Test_Coordinator_Run_CreatesOneSpanPerRun(t *testing.T) {
	tracing := helper.NewTracingCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithTracing(tracing))

	report, err := coordinator.Run(context.Background(), 5, 500)
	require.NoError(t, err)

	spans := tracing.SpanRecords()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "lockbench.run", span.Name)
	assert.Equal(t, report.RunID.String(), span.StartAttributes["run_id"])
	assert.Equal(t, "5", span.StartAttributes["thread_count"])
	assert.Equal(t, "500", span.StartAttributes["termination_target"])

	assert.True(t, span.Finished)
	assert.Equal(t, "success", span.Status)
	assert.Equal(t, "500", span.EndAttributes["final_count"])
	assert.Equal(t, strconv.Itoa(5), span.EndAttributes["worker_completions"])

	assert.Equal(t, "success", span.SpanContext.Status())
	assert.Contains(t, span.SpanContext.Attributes(), "duration_ms")
}

func Test_Coordinator_Run_NoSpanForInvalidConfiguration(t *testing.T) {
	tracing := helper.NewTracingCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithTracing(tracing))

	_, err := coordinator.Run(context.Background(), 0, 1)
	require.ErrorIs(t, err, lockbench.ErrInvalidThreadCount)

	assert.Empty(t, tracing.SpanRecords())
}

func Test_Coordinator_Run_RecordsMetricsPerRun(t *testing.T) {
	metrics := helper.NewMetricsCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithMetrics(metrics))

	for _, threadCount := range []int{1, 3, 7} {
		metrics.Reset()

		_, err := coordinator.Run(context.Background(), threadCount, 700)
		require.NoError(t, err)

		assert.Equal(t, threadCount, metrics.Count("lockbench_workers_spawned_total"))
		assert.Equal(t, threadCount, metrics.Count("lockbench_worker_completions_total"))
		assert.Equal(t, 1, metrics.Count("lockbench_final_count"))
	}
}
