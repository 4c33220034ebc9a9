package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State is the session lifecycle state. Transitions are owned exclusively by
// the dispatcher; handler code never mutates session state.
type State int

const (
	// StateNotConnected is the initial state before any message arrives.
	StateNotConnected State = iota
	// StateInitializing is entered on receiving the initialize request.
	StateInitializing
	// StateReady is entered after the peer's initialized notification.
	StateReady
	// StateShuttingDown is terminal: new requests are rejected, in-flight
	// requests complete.
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateNotConnected:
		return "not_connected"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the per-connection lifecycle state of a server instance. One
// session exists per connected peer; it is created with the server and
// destroyed on transport close or fatal error.
type Session struct {
	id string

	mu    sync.RWMutex
	state State
}

// NewSession creates a session in the NotConnected state with a fresh ID.
func NewSession() *Session {
	return &Session{
		id:    uuid.NewString(),
		state: StateNotConnected,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// beginInitialize moves NotConnected -> Initializing.
func (s *Session) beginInitialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotConnected {
		return fmt.Errorf("cannot initialize in state %s", s.state)
	}
	s.state = StateInitializing
	return nil
}

// markReady moves Initializing -> Ready.
func (s *Session) markReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInitializing {
		return fmt.Errorf("cannot become ready in state %s", s.state)
	}
	s.state = StateReady
	return nil
}

// beginShutdown moves any state to ShuttingDown. It is idempotent and
// reports whether this call performed the transition.
func (s *Session) beginShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateShuttingDown {
		return false
	}
	s.state = StateShuttingDown
	return true
}
