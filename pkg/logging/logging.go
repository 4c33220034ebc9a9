// Package logging provides the structured logging utilities used across the
// server. All output goes to stderr (or an injected sink); the protocol
// stream must carry protocol bytes only.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents the minimum severity a logger will emit.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// Level, defaulting to InfoLevel for unknown names.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger is the logging interface used throughout the server. Messages take
// alternating key-value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// formatLine renders "[LEVEL] msg k1=v1 k2=v2". An orphaned trailing key is
// rendered as "key=?".
func formatLine(level Level, msg string, keysAndValues []interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)

	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v=?", keysAndValues[i])
		}
	}

	return b.String()
}

// StdLogger writes formatted log lines to stderr via the standard library
// logger.
type StdLogger struct {
	mu     sync.Mutex
	level  Level
	logger *log.Logger
}

// NewStdLogger creates a logger writing to stderr at the given level.
func NewStdLogger(level Level) *StdLogger {
	return &StdLogger{
		level:  level,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// SetLevel changes the minimum level emitted.
func (l *StdLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *StdLogger) log(level Level, msg string, keysAndValues []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	l.logger.Print(formatLine(level, msg, keysAndValues))
}

func (l *StdLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(DebugLevel, msg, keysAndValues)
}

func (l *StdLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(InfoLevel, msg, keysAndValues)
}

func (l *StdLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(WarnLevel, msg, keysAndValues)
}

func (l *StdLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(ErrorLevel, msg, keysAndValues)
}

// NoopLogger discards everything.
type NoopLogger struct{}

// NewNoopLogger creates a logger that does nothing.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *NoopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *NoopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (l *NoopLogger) Error(msg string, keysAndValues ...interface{}) {}

// TestingT is the subset of testing.T the TestLogger needs.
type TestingT interface {
	Logf(format string, args ...interface{})
}

// TestLogger routes log output through a testing.T so it is attached to the
// test that produced it.
type TestLogger struct {
	mu    sync.Mutex
	t     TestingT
	level Level
}

// NewTestLogger creates a logger writing through t.Logf at DebugLevel.
func NewTestLogger(t TestingT) *TestLogger {
	return &TestLogger{t: t, level: DebugLevel}
}

// SetLevel changes the minimum level emitted.
func (l *TestLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *TestLogger) log(level Level, msg string, keysAndValues []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	l.t.Logf("%s", formatLine(level, msg, keysAndValues))
}

func (l *TestLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(DebugLevel, msg, keysAndValues)
}

func (l *TestLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(InfoLevel, msg, keysAndValues)
}

func (l *TestLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(WarnLevel, msg, keysAndValues)
}

func (l *TestLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(ErrorLevel, msg, keysAndValues)
}
