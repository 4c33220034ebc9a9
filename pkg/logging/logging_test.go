package logging

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"testing"
)

// testWriter is a simple io.Writer that captures log output.
type testWriter struct {
	buf bytes.Buffer
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	return w.buf.Write(p)
}

func (w *testWriter) String() string {
	return w.buf.String()
}

func TestStdLogger(t *testing.T) {
	writer := &testWriter{}

	stdLog := NewStdLogger(DebugLevel)
	stdLog.logger = log.New(writer, "", 0) // No timestamps to make testing easier

	stdLog.Debug("Debug message", "key1", "value1")
	if !strings.Contains(writer.String(), "[DEBUG] Debug message key1=value1") {
		t.Errorf("Expected Debug message to be logged, got: %s", writer.String())
	}
	writer.buf.Reset()

	stdLog.Info("Info message", "key2", "value2")
	if !strings.Contains(writer.String(), "[INFO] Info message key2=value2") {
		t.Errorf("Expected Info message to be logged, got: %s", writer.String())
	}
	writer.buf.Reset()

	stdLog.Warn("Warning message", "key3", "value3")
	if !strings.Contains(writer.String(), "[WARN] Warning message key3=value3") {
		t.Errorf("Expected Warning message to be logged, got: %s", writer.String())
	}
	writer.buf.Reset()

	stdLog.Error("Error message", "key4", "value4")
	if !strings.Contains(writer.String(), "[ERROR] Error message key4=value4") {
		t.Errorf("Expected Error message to be logged, got: %s", writer.String())
	}
}

func TestStdLoggerLevels(t *testing.T) {
	writer := &testWriter{}

	stdLog := NewStdLogger(InfoLevel)
	stdLog.logger = log.New(writer, "", 0)

	// Debug messages should not be logged at InfoLevel
	stdLog.Debug("Debug message")
	if writer.String() != "" {
		t.Errorf("Expected no output for Debug at InfoLevel, got: %s", writer.String())
	}

	stdLog.Info("Info message")
	if !strings.Contains(writer.String(), "[INFO] Info message") {
		t.Errorf("Expected Info message to be logged, got: %s", writer.String())
	}
	writer.buf.Reset()

	stdLog = NewStdLogger(ErrorLevel)
	stdLog.logger = log.New(writer, "", 0)

	stdLog.Debug("Debug message")
	stdLog.Info("Info message")
	stdLog.Warn("Warning message")
	if writer.String() != "" {
		t.Errorf("Expected no output for Debug/Info/Warn at ErrorLevel, got: %s", writer.String())
	}

	stdLog.Error("Error message")
	if !strings.Contains(writer.String(), "[ERROR] Error message") {
		t.Errorf("Expected Error message to be logged, got: %s", writer.String())
	}
}

func TestLogKeyValueFormatting(t *testing.T) {
	writer := &testWriter{}

	stdLog := NewStdLogger(DebugLevel)
	stdLog.logger = log.New(writer, "", 0)

	stdLog.Info("Multi KV", "key1", "value1", "key2", 42, "key3", true)
	logOutput := writer.String()

	for _, want := range []string{"key1=value1", "key2=42", "key3=true"} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("Expected %q in log output, got: %s", want, logOutput)
		}
	}
	writer.buf.Reset()

	// An odd number of key-value arguments leaves an orphaned key.
	stdLog.Info("Odd KV", "key1", "value1", "orphaned")
	logOutput = writer.String()
	if !strings.Contains(logOutput, "orphaned=?") {
		t.Errorf("Expected 'orphaned=?' in log output, got: %s", logOutput)
	}
}

func TestNoopLogger(t *testing.T) {
	logger := NewNoopLogger()

	// All of these should be no-ops; the test fails only on a panic.
	logger.Debug("Debug message", "key", "value")
	logger.Info("Info message", "key", "value")
	logger.Warn("Warning message", "key", "value")
	logger.Error("Error message", "key", "value")
}

// mockTestingT implements the TestingT interface for testing.
type mockTestingT struct {
	logs []string
}

func (m *mockTestingT) Logf(format string, args ...interface{}) {
	m.logs = append(m.logs, fmt.Sprintf(format, args...))
}

func TestTestLogger(t *testing.T) {
	mockT := &mockTestingT{logs: make([]string, 0)}
	logger := NewTestLogger(mockT)

	logger.Debug("Debug message", "key1", "value1")
	if len(mockT.logs) != 1 || !strings.Contains(mockT.logs[0], "[DEBUG] Debug message key1=value1") {
		t.Errorf("Expected Debug message to be logged, got: %v", mockT.logs)
	}
	mockT.logs = mockT.logs[:0]

	logger.Error("Error message", "key4", "value4")
	if len(mockT.logs) != 1 || !strings.Contains(mockT.logs[0], "[ERROR] Error message key4=value4") {
		t.Errorf("Expected Error message to be logged, got: %v", mockT.logs)
	}
}

func TestTestLoggerLevels(t *testing.T) {
	mockT := &mockTestingT{logs: make([]string, 0)}
	logger := NewTestLogger(mockT)

	logger.SetLevel(ErrorLevel)

	logger.Debug("Debug message")
	logger.Info("Info message")
	logger.Warn("Warning message")
	if len(mockT.logs) != 0 {
		t.Errorf("Expected no output for Debug/Info/Warn at ErrorLevel, got: %v", mockT.logs)
	}

	logger.Error("Error message")
	if len(mockT.logs) != 1 || !strings.Contains(mockT.logs[0], "[ERROR] Error message") {
		t.Errorf("Expected Error message to be logged, got: %v", mockT.logs)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
