package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/lockbench/lockbench"
)

// SpyLogRecord represents a recorded log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value logged for key, or nil.
func (r SpyLogRecord) Attr(key string) any {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1]
		}
	}

	return nil
}

// ContextualLoggerSpy captures contextual logging calls for testing.
type ContextualLoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

// DebugContext implements lockbench.ContextualLogger.
func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

// InfoContext implements lockbench.ContextualLogger.
func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

// WarnContext implements lockbench.ContextualLogger.
func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

// ErrorContext implements lockbench.ContextualLogger.
func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

// RecordsAt returns a copy of the records logged at level.
func (s *ContextualLoggerSpy) RecordsAt(level string) []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, 0)
	for _, r := range s.records {
		if r.Level == level {
			records = append(records, r)
		}
	}

	return records
}

// RecordsWithMessage returns a copy of the records with exactly the given message.
func (s *ContextualLoggerSpy) RecordsWithMessage(msg string) []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, 0)
	for _, r := range s.records {
		if r.Message == msg {
			records = append(records, r)
		}
	}

	return records
}

var _ lockbench.ContextualLogger = (*ContextualLoggerSpy)(nil)
