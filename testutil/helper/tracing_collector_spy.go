package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/lockbench/lockbench"
)

// SpySpanContext implements lockbench.SpanContext for testing tracing functionality.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements lockbench.SpanContext.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements lockbench.SpanContext.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// Status returns the status set on the span context.
func (c *SpySpanContext) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Attributes returns a copy of the attributes added to the span context.
func (c *SpySpanContext) Attributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.attributes)
}

// SpySpanRecord represents one span started through the TracingCollectorSpy.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Finished        bool
	Status          string
	EndAttributes   map[string]string
	SpanContext     *SpySpanContext
}

// TracingCollectorSpy is a lockbench.TracingCollector that captures all spans for inspection.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	mu          sync.Mutex
}

// NewTracingCollectorSpy creates a new, empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{spanRecords: make([]SpySpanRecord, 0)}
}

// StartSpan implements lockbench.TracingCollector.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, lockbench.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{attributes: make(map[string]string)}

	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements lockbench.TracingCollector.
func (s *TracingCollectorSpy) FinishSpan(spanCtx lockbench.SpanContext, status string, attrs map[string]string) {
	spyCtx, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spanRecords {
		if s.spanRecords[i].SpanContext == spyCtx {
			s.spanRecords[i].Finished = true
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = maps.Clone(attrs)
			break
		}
	}
}

// SpanRecords returns a copy of all captured span records.
func (s *TracingCollectorSpy) SpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, len(s.spanRecords))
	copy(records, s.spanRecords)

	return records
}

// SpanRecord returns the first span record with the given name.
func (s *TracingCollectorSpy) SpanRecord(name string) (SpySpanRecord, bool) {
	for _, record := range s.SpanRecords() {
		if record.Name == name {
			return record, true
		}
	}

	return SpySpanRecord{}, false
}

var _ lockbench.TracingCollector = (*TracingCollectorSpy)(nil)
