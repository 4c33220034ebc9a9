// Package errors defines the protocol-specific error types shared by the
// transport, registry and dispatch layers.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotInitialized indicates a request arrived before the session
	// completed initialization.
	ErrNotInitialized = errors.New("server not initialized")

	// ErrConnClosed indicates the transport has been closed.
	ErrConnClosed = errors.New("connection closed")

	// ErrShuttingDown indicates the server is draining and rejects new work.
	ErrShuttingDown = errors.New("server is shutting down")

	// ErrDuplicateTool indicates a tool name was registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrRegistryFrozen indicates a registration attempt after the registry
	// became read-only.
	ErrRegistryFrozen = errors.New("tool registry is frozen")
)

// ProtocolError represents a JSON-RPC protocol-level error with its wire code.
type ProtocolError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *ProtocolError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("protocol error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// TimeoutError indicates a request exceeded its processing deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Duration)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var p *ProtocolError
	return errors.As(err, &p)
}

// AsProtocolError extracts a ProtocolError from err's chain if present.
func AsProtocolError(err error) (*ProtocolError, bool) {
	var p *ProtocolError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
