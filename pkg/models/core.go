// Package models defines the MCP data model shared by the registry and the
// dispatch server: implementations, tools, content items and call results.
package models

// Implementation describes the name and version of an MCP implementation
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// LogLevel represents the severity of a log message, following the syslog
// ladder used by MCP's logging/setLevel.
type LogLevel string

const (
	LogLevelEmergency LogLevel = "emergency"
	LogLevelAlert     LogLevel = "alert"
	LogLevelCritical  LogLevel = "critical"
	LogLevelError     LogLevel = "error"
	LogLevelWarning   LogLevel = "warning"
	LogLevelNotice    LogLevel = "notice"
	LogLevelInfo      LogLevel = "info"
	LogLevelDebug     LogLevel = "debug"
)

// severity orders levels from most (0) to least severe.
var severity = map[LogLevel]int{
	LogLevelEmergency: 0,
	LogLevelAlert:     1,
	LogLevelCritical:  2,
	LogLevelError:     3,
	LogLevelWarning:   4,
	LogLevelNotice:    5,
	LogLevelInfo:      6,
	LogLevelDebug:     7,
}

// IsValid reports whether l is one of the defined levels.
func (l LogLevel) IsValid() bool {
	_, ok := severity[l]
	return ok
}

// Enables reports whether a message at level msg should be emitted when the
// current threshold is l.
func (l LogLevel) Enables(msg LogLevel) bool {
	li, ok := severity[l]
	if !ok {
		return false
	}
	mi, ok := severity[msg]
	if !ok {
		return false
	}
	return mi <= li
}
