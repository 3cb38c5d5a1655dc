package lockbench_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lockbench/lockbench"
	"github.com/AntonStoeckl/lockbench/testutil/helper"
)

func newCoordinator(t *testing.T, options ...lockbench.Option) *lockbench.Coordinator {
	t.Helper()

	coordinator, err := lockbench.NewCoordinator(options...)
	require.NoError(t, err)

	return coordinator
}

func Test_Coordinator_Run_FinalCountEqualsTarget(t *testing.T) {
	tests := []struct {
		threadCount       int
		terminationTarget int64
	}{
		{threadCount: 1, terminationTarget: 0},
		{threadCount: 1, terminationTarget: 5},
		{threadCount: 1, terminationTarget: 10_000},
		{threadCount: 2, terminationTarget: 1},
		{threadCount: 4, terminationTarget: 1000},
		{threadCount: 8, terminationTarget: 3},
		{threadCount: 10, terminationTarget: 0},
		{threadCount: 16, terminationTarget: 50_000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d threads to %d", tt.threadCount, tt.terminationTarget), func(t *testing.T) {
			coordinator := newCoordinator(t)

			report, err := coordinator.Run(context.Background(), tt.threadCount, tt.terminationTarget)

			require.NoError(t, err)
			assert.Equal(t, tt.terminationTarget, report.FinalCount)
			assert.Equal(t, tt.threadCount, report.WorkerCompletions)
			assert.Equal(t, tt.threadCount, report.ThreadCount)
			assert.Equal(t, tt.terminationTarget, report.TerminationTarget)
		})
	}
}

func Test_Coordinator_Run_FourWorkersToOneThousand(t *testing.T) {
	metrics := helper.NewMetricsCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithMetrics(metrics))

	report, err := coordinator.Run(context.Background(), 4, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), report.FinalCount)
	assert.Equal(t, 4, report.WorkerCompletions)
	assert.Equal(t, 4, metrics.Count("lockbench_worker_completions_total"), "exactly 4 worker completions")
}

func Test_Coordinator_Run_TargetZeroTerminatesAllWorkersImmediately(t *testing.T) {
	logHandler := helper.NewTestLogHandler(false)
	coordinator := newCoordinator(t,
		lockbench.WithLogger(slog.New(logHandler)),
		lockbench.WithWorkerDiagnostics(),
	)

	report, err := coordinator.Run(context.Background(), 10, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(0), report.FinalCount)
	assert.Equal(t, 10, report.WorkerCompletions)

	diagnostics := logHandler.RecordsAt(slog.LevelDebug)
	require.Len(t, diagnostics, 10)
	for _, record := range diagnostics {
		assert.Equal(t, int64(0), helper.RecordAttr(record, "iterations").Int64())
	}
}

func Test_Coordinator_Run_RepeatedRunsYieldTheSameFinalCount(t *testing.T) {
	coordinator := newCoordinator(t)

	var runIDs []string
	for i := 0; i < 5; i++ {
		report, err := coordinator.Run(context.Background(), 8, 25_000)

		require.NoError(t, err)
		assert.Equal(t, int64(25_000), report.FinalCount)
		runIDs = append(runIDs, report.RunID.String())
	}

	assert.Len(t, uniqueStrings(runIDs), 5, "every run gets its own id")
}

func Test_Coordinator_Run_Stress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress run skipped in short mode")
	}

	coordinator := newCoordinator(t)

	report, err := coordinator.Run(context.Background(), 64, 1_000_000)

	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), report.FinalCount)
	assert.Equal(t, 64, report.WorkerCompletions)
}

func Test_Coordinator_Run_WithOSThreadPerWorker(t *testing.T) {
	coordinator := newCoordinator(t, lockbench.WithOSThreadPerWorker())

	report, err := coordinator.Run(context.Background(), 4, 10_000)

	require.NoError(t, err)
	assert.Equal(t, int64(10_000), report.FinalCount)
}

func Test_Coordinator_Run_RejectsInvalidConfiguration(t *testing.T) {
	logger := helper.NewContextualLoggerSpy()
	metrics := helper.NewMetricsCollectorSpy()
	coordinator := newCoordinator(t, lockbench.WithContextualLogger(logger), lockbench.WithMetrics(metrics))

	_, err := coordinator.Run(context.Background(), 0, 10)
	assert.ErrorIs(t, err, lockbench.ErrInvalidThreadCount)

	_, err = coordinator.Run(context.Background(), -3, 10)
	assert.ErrorIs(t, err, lockbench.ErrInvalidThreadCount)

	_, err = coordinator.Run(context.Background(), 1, -2)
	assert.ErrorIs(t, err, lockbench.ErrInvalidTerminationTarget)

	assert.Len(t, logger.RecordsAt("error"), 3)
	assert.Empty(t, logger.RecordsAt("info"), "no run must start")
	assert.Equal(t, 0, metrics.TotalCount())
}

func Test_Coordinator_Run_SpawnCeilingFailsWithoutTouchingTheCounter(t *testing.T) {
	logger := helper.NewContextualLoggerSpy()
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()
	coordinator := newCoordinator(t,
		lockbench.WithMaxWorkers(3),
		lockbench.WithContextualLogger(logger),
		lockbench.WithMetrics(metrics),
		lockbench.WithTracing(tracing),
	)

	report, err := coordinator.Run(context.Background(), 5, 100)

	require.ErrorIs(t, err, lockbench.ErrWorkerSpawnFailed)
	assert.Contains(t, err.Error(), "spawned 3 of 5 workers")
	assert.Equal(t, lockbench.RunReport{}, report)

	assert.Equal(t, 3, metrics.Count("lockbench_workers_spawned_total"))
	assert.Equal(t, 0, metrics.Count("lockbench_worker_completions_total"), "aborted workers must not run")
	assert.True(t, metrics.HasRecordWithLabel("lockbench_run_errors_total", "error_type", "spawn_failed"))

	errorLogs := logger.RecordsWithMessage("spawning workers failed")
	require.Len(t, errorLogs, 1)
	assert.Equal(t, 3, errorLogs[0].Attr("spawned_workers"))

	span, found := tracing.SpanRecord("lockbench.run")
	require.True(t, found)
	assert.True(t, span.Finished)
	assert.Equal(t, "error", span.Status)
	assert.Equal(t, "spawn_failed", span.EndAttributes["error_type"])
}

func Test_Coordinator_Run_WithinSpawnCeiling(t *testing.T) {
	coordinator := newCoordinator(t, lockbench.WithMaxWorkers(3))

	report, err := coordinator.Run(context.Background(), 3, 300)

	require.NoError(t, err)
	assert.Equal(t, int64(300), report.FinalCount)
}

func Test_NewCoordinator_RejectsNegativeMaxWorkers(t *testing.T) {
	coordinator, err := lockbench.NewCoordinator(lockbench.WithMaxWorkers(-1))

	assert.ErrorIs(t, err, lockbench.ErrInvalidMaxWorkers)
	assert.Nil(t, coordinator)
}

func uniqueStrings(values []string) map[string]struct{} {
	unique := make(map[string]struct{}, len(values))
	for _, v := range values {
		unique[v] = struct{}{}
	}

	return unique
}
