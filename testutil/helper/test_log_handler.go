package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// TestLogHandler is a slog.Handler that captures log records for testing.
// Wrap it with slog.New to get a lockbench.Logger.
type TestLogHandler struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewTestLogHandler creates a new TestLogHandler.
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewTestLogHandler(logToStdout bool) *TestLogHandler {
	return &TestLogHandler{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdout,
	}
}

// Handle implements slog.Handler.
func (h *TestLogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())

	if h.logToStdout {
		_ = slog.NewTextHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler. All levels are enabled.
func (h *TestLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler.
func (h *TestLogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *TestLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// RecordsAt returns a copy of the captured records with the given level.
func (h *TestLogHandler) RecordsAt(level slog.Level) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := make([]slog.Record, 0)
	for _, r := range h.records {
		if r.Level == level {
			records = append(records, r)
		}
	}

	return records
}

// HasMessage reports whether a record with exactly msg was captured.
func (h *TestLogHandler) HasMessage(msg string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range h.records {
		if r.Message == msg {
			return true
		}
	}

	return false
}

// RecordAttr returns the value of the attribute key on record, or an empty slog.Value.
func RecordAttr(record slog.Record, key string) slog.Value {
	var value slog.Value
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			value = attr.Value
			return false
		}
		return true
	})

	return value
}
