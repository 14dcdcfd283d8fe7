// Package session coordinates one capture session: the live recognition
// stream, the buffered audio stream, the silence-debounced AI round trip
// and final persistence.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a capture session.
type State int

const (
	// StateIdle - No recording in progress.
	StateIdle State = iota
	// StateRecording - Streams are open, transcript is accumulating.
	StateRecording
	// StateFinalizing - Streams closed, artifacts being persisted.
	StateFinalizing
	// StateDropped - Session was abandoned due to a limit or fatal error.
	// Terminal; nothing is persisted. "Silence > bad data"
	StateDropped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRecording:
		return "RECORDING"
	case StateFinalizing:
		return "FINALIZING"
	case StateDropped:
		return "DROPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Errors for invalid state transitions.
var (
	ErrAlreadyRecording = errors.New("session is already recording")
	ErrNotRecording     = errors.New("session is not recording")
	ErrSessionDropped   = errors.New("session was dropped")
)

// lifecycle manages the state machine for a single session.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	IDLE → RECORDING → FINALIZING → IDLE
//	          │
//	          └── Drop() ──→ DROPPED (terminal)
//
// Rules:
//   - IDLE: can begin recording; appends are rejected
//   - RECORDING: transcript appends and audio chunks allowed
//   - FINALIZING: no further appends; completes back to IDLE
//   - DROPPED: all operations are rejected
type lifecycle struct {
	mu    sync.RWMutex
	state State
}

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateIdle}
}

func (l *lifecycle) current() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// beginRecording transitions IDLE → RECORDING.
func (l *lifecycle) beginRecording() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateIdle:
		l.state = StateRecording
		return nil
	case StateRecording, StateFinalizing:
		return ErrAlreadyRecording
	case StateDropped:
		return ErrSessionDropped
	default:
		return fmt.Errorf("unexpected state: %v", l.state)
	}
}

// canAppend reports whether recognition results may be applied.
func (l *lifecycle) canAppend() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRecording
}

// beginFinalizing transitions RECORDING → FINALIZING.
func (l *lifecycle) beginFinalizing() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateRecording:
		l.state = StateFinalizing
		return nil
	case StateDropped:
		return ErrSessionDropped
	default:
		return ErrNotRecording
	}
}

// finish transitions FINALIZING → IDLE.
func (l *lifecycle) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateFinalizing {
		l.state = StateIdle
	}
}

// drop transitions to the terminal DROPPED state.
// Returns false if already dropped.
func (l *lifecycle) drop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateDropped {
		return false
	}
	l.state = StateDropped
	return true
}
