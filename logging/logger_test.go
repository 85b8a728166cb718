package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*CoreLogger)(nil)
	_ Logger = NoOpLogger{}
)

func newBufferLogger(level LogLevel) (*CoreLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = buf
	cfg.AddSource = false
	return NewLogger(cfg), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestCoreLogger_WritesStructuredJSON(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.Info("service registered")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "service registered", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestCoreLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0]["msg"])
}

func TestCoreLogger_ContextualAttributes(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithComponent("queue").
		WithActor("teacher-1").
		WithContext("batch_size", 5).
		Info("drain started")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "queue", entries[0]["component"])
	assert.Equal(t, "teacher-1", entries[0]["actor_id"])
	assert.Equal(t, float64(5), entries[0]["batch_size"])
}

func TestCoreLogger_WithDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	child := l.WithService("db")
	child.Info("from child")
	l.Info("from parent")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "db", entries[0]["service"])
	_, hasService := entries[1]["service"]
	assert.False(t, hasService)
}

func TestCoreLogger_LogRetryAttempt(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.LogRetryAttempt("db.connect", 2, 4, errors.New("timeout"))
	l.LogRetryAttempt("db.connect", 3, 4, nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Attempt failed", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "timeout", entries[0]["error"])
	assert.Equal(t, "Attempt succeeded", entries[1]["msg"])
}

func TestCoreLogger_LogHealthCheck(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogHealthCheck("db", false, 15*time.Millisecond, errors.New("connection refused"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "Health check failed", entries[0]["msg"])
	assert.Equal(t, "db", entries[0]["service"])
	assert.Equal(t, false, entries[0]["healthy"])
}

func TestCoreLogger_TextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Format = "text"
	cfg.Output = buf
	cfg.AddSource = false
	NewLogger(cfg).Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestSlogAdapter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewSlogAdapter(slog.New(slog.NewTextHandler(buf, nil)))

	l.Info("adapted", "key", "value")

	assert.Contains(t, buf.String(), "adapted")
	assert.Contains(t, buf.String(), "key=value")
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}
