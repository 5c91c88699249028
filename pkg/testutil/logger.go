package testutil

import (
	"context"
	"sync"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

// MockLogger captures log entries for assertions. Child loggers created with
// With share the parent's entries and prepend their own fields.
type MockLogger struct {
	mu     *sync.Mutex
	logs   *[]LogEntry
	fields []any
}

// LogEntry is one captured entry.
type LogEntry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{mu: &sync.Mutex{}, logs: &[]LogEntry{}}
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("debug", msg, args) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("info", msg, args) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("warn", msg, args) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("error", msg, args) }

func (m *MockLogger) With(args ...any) logger.Logger {
	fields := append(append([]any(nil), m.fields...), args...)
	return &MockLogger{mu: m.mu, logs: m.logs, fields: fields}
}

func (m *MockLogger) WithContext(ctx context.Context) logger.Logger {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		return m.With("correlation_id", id)
	}
	return m
}

// Entries returns a copy of the captured entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), (*m.logs)...)
}

// Find returns the first entry with the given level and message.
func (m *MockLogger) Find(level, msg string) (LogEntry, bool) {
	for _, e := range m.Entries() {
		if e.Level == level && e.Msg == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}

func (m *MockLogger) record(level, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.logs = append(*m.logs, LogEntry{
		Level:  level,
		Msg:    msg,
		Fields: argsToMap(append(append([]any(nil), m.fields...), args...)),
	})
}

func argsToMap(args []any) map[string]any {
	fields := make(map[string]any)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	return fields
}
