package lockbench

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// RunReport summarizes one completed benchmark run.
type RunReport struct {
	RunID             uuid.UUID     // Unique id of the run, also used in logs and spans
	ThreadCount       int           // Number of workers that were spawned
	TerminationTarget int64         // Target the counter had to reach
	FinalCount        int64         // Counter value after all workers were joined
	WorkerCompletions int           // Number of workers that observed Done
	StartedAt         time.Time     // When the workers were released
	Duration          time.Duration // Time from releasing the workers until all were joined
}

type runReportJSON struct {
	RunID               string    `json:"run_id"`
	ThreadCount         int       `json:"thread_count"`
	TerminationTarget   int64     `json:"termination_target"`
	FinalCount          int64     `json:"final_count"`
	WorkerCompletions   int       `json:"worker_completions"`
	StartedAt           time.Time `json:"started_at"`
	DurationMS          float64   `json:"duration_ms"`
	IncrementsPerSecond float64   `json:"increments_per_second"`
}

// IncrementsPerSecond returns the run's throughput, 0 for runs without measurable duration.
func (r RunReport) IncrementsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}

	return float64(r.FinalCount) / r.Duration.Seconds()
}

// JSON encodes the report as a JSON object.
func (r RunReport) JSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(runReportJSON{
		RunID:               r.RunID.String(),
		ThreadCount:         r.ThreadCount,
		TerminationTarget:   r.TerminationTarget,
		FinalCount:          r.FinalCount,
		WorkerCompletions:   r.WorkerCompletions,
		StartedAt:           r.StartedAt,
		DurationMS:          toMilliseconds(r.Duration),
		IncrementsPerSecond: r.IncrementsPerSecond(),
	})
}

// String returns a one-line human-readable summary.
func (r RunReport) String() string {
	return fmt.Sprintf(
		"run %s: %d threads, final count %d of %d, %d completions in %s",
		r.RunID, r.ThreadCount, r.FinalCount, r.TerminationTarget, r.WorkerCompletions, r.Duration,
	)
}
