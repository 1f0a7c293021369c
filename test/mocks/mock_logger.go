package mocks

import (
	"sync"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
)

// Log levels recorded by MockLogger
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   string
	Message string
	Fields  []ports.Field
}

// Field returns the value of the named field, or nil
func (e LogEntry) Field(key string) interface{} {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// MockLogger records log calls. It is safe for use by concurrent handlers.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ ports.Logger = (*MockLogger)(nil)

// NewMockLogger creates an empty recording logger
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, fields []ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields ...ports.Field) { m.record(LevelDebug, msg, fields) }
func (m *MockLogger) Info(msg string, fields ...ports.Field)  { m.record(LevelInfo, msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...ports.Field)  { m.record(LevelWarn, msg, fields) }
func (m *MockLogger) Error(msg string, fields ...ports.Field) { m.record(LevelError, msg, fields) }

// Entries returns the captured calls at level, or all calls when level is empty
func (m *MockLogger) Entries(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []LogEntry
	for _, e := range m.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasMessage reports whether any level captured msg
func (m *MockLogger) HasMessage(msg string) bool {
	for _, e := range m.Entries("") {
		if e.Message == msg {
			return true
		}
	}
	return false
}
