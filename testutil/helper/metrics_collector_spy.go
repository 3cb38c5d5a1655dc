package helper

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/lockbench/lockbench"
)

// MetricKind distinguishes the three MetricsCollector methods in recorded calls.
type MetricKind string

const (
	MetricKindDuration MetricKind = "duration"
	MetricKindCounter  MetricKind = "counter"
	MetricKindValue    MetricKind = "value"
)

// SpyMetricRecord represents one recorded MetricsCollector call.
type SpyMetricRecord struct {
	Kind     MetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
	Context  context.Context // nil for calls without context
}

// MetricsCollectorSpy is a lockbench.ContextualMetricsCollector that captures every call for inspection.
// Safe for concurrent use, since workers record from their own goroutines.
type MetricsCollectorSpy struct {
	records []SpyMetricRecord
	mu      sync.Mutex
}

// NewMetricsCollectorSpy creates a new, empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{records: make([]SpyMetricRecord, 0)}
}

func (s *MetricsCollectorSpy) record(r SpyMetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Labels = maps.Clone(r.Labels)
	s.records = append(s.records, r)
}

// RecordDuration implements lockbench.MetricsCollector.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels})
}

// IncrementCounter implements lockbench.MetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels})
}

// RecordValue implements lockbench.MetricsCollector.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels})
}

// RecordDurationContext implements lockbench.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels, Context: ctx})
}

// IncrementCounterContext implements lockbench.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) IncrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels, Context: ctx})
}

// RecordValueContext implements lockbench.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels, Context: ctx})
}

// Records returns a copy of all captured records, filtered to the given metric name.
func (s *MetricsCollectorSpy) Records(metric string) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyMetricRecord, 0)
	for _, r := range s.records {
		if r.Metric == metric {
			records = append(records, r)
		}
	}

	return records
}

// Count returns how many calls were recorded for the given metric name.
func (s *MetricsCollectorSpy) Count(metric string) int {
	return len(s.Records(metric))
}

// TotalCount returns the number of captured records over all metrics.
func (s *MetricsCollectorSpy) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// HasRecordWithLabel reports whether a record for metric carries the label key=value.
func (s *MetricsCollectorSpy) HasRecordWithLabel(metric, key, value string) bool {
	for _, r := range s.Records(metric) {
		if r.Labels[key] == value {
			return true
		}
	}

	return false
}

// LastValue returns the value of the most recent value record for metric.
func (s *MetricsCollectorSpy) LastValue(metric string) (float64, bool) {
	records := s.Records(metric)
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Kind == MetricKindValue {
			return records[i].Value, true
		}
	}

	return 0, false
}

// Reset clears all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

var _ lockbench.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)

// PlainMetricsCollectorSpy hides the context-aware methods of a MetricsCollectorSpy, so the code under test
// has to fall back to the plain lockbench.MetricsCollector methods.
type PlainMetricsCollectorSpy struct {
	spy *MetricsCollectorSpy
}

// NewPlainMetricsCollectorSpy wraps spy as a lockbench.MetricsCollector only.
func NewPlainMetricsCollectorSpy(spy *MetricsCollectorSpy) PlainMetricsCollectorSpy {
	return PlainMetricsCollectorSpy{spy: spy}
}

// RecordDuration implements lockbench.MetricsCollector.
func (p PlainMetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	p.spy.RecordDuration(metric, duration, labels)
}

// IncrementCounter implements lockbench.MetricsCollector.
func (p PlainMetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	p.spy.IncrementCounter(metric, labels)
}

// RecordValue implements lockbench.MetricsCollector.
func (p PlainMetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	p.spy.RecordValue(metric, value, labels)
}

var _ lockbench.MetricsCollector = PlainMetricsCollectorSpy{}
