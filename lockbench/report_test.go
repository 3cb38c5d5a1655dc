package lockbench_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lockbench/lockbench"
)

func fixtureReport() lockbench.RunReport {
	return lockbench.RunReport{
		RunID:             uuid.MustParse("0b9c4e8e-3a51-4c43-9d6e-0f1f0a1d2e3f"),
		ThreadCount:       4,
		TerminationTarget: 1000,
		FinalCount:        1000,
		WorkerCompletions: 4,
		StartedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:          500 * time.Millisecond,
	}
}

func Test_RunReport_IncrementsPerSecond(t *testing.T) {
	report := fixtureReport()

	assert.InDelta(t, 2000.0, report.IncrementsPerSecond(), 0.0001)
}

func Test_RunReport_IncrementsPerSecond_ZeroDuration(t *testing.T) {
	report := fixtureReport()
	report.Duration = 0

	assert.Equal(t, 0.0, report.IncrementsPerSecond())
}

func Test_RunReport_JSON(t *testing.T) {
	data, err := fixtureReport().JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, jsoniter.Unmarshal(data, &decoded))

	assert.Equal(t, "0b9c4e8e-3a51-4c43-9d6e-0f1f0a1d2e3f", decoded["run_id"])
	assert.Equal(t, 4.0, decoded["thread_count"])
	assert.Equal(t, 1000.0, decoded["termination_target"])
	assert.Equal(t, 1000.0, decoded["final_count"])
	assert.Equal(t, 4.0, decoded["worker_completions"])
	assert.Equal(t, "2026-03-01T12:00:00Z", decoded["started_at"])
	assert.Equal(t, 500.0, decoded["duration_ms"])
	assert.Equal(t, 2000.0, decoded["increments_per_second"])
}

func Test_RunReport_String(t *testing.T) {
	assert.Equal(t,
		"run 0b9c4e8e-3a51-4c43-9d6e-0f1f0a1d2e3f: 4 threads, final count 1000 of 1000, 4 completions in 500ms",
		fixtureReport().String(),
	)
}
