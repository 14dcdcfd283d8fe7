// Package remote adapts recognition results produced elsewhere (the
// browser's speech API) into the recognizer contract. The transport
// pushes results; audio frames are buffered by the session, not
// transcribed here.
package remote

import (
	"context"
	"sync"

	"speech-practice-service/internal/recognizer/types"
)

// Recognizer implements types.Recognizer for externally produced results.
type Recognizer struct {
	mu     sync.Mutex
	events chan types.Event
	closed bool
}

// New creates a remote recognizer.
func New() *Recognizer {
	return &Recognizer{
		events: make(chan types.Event, 32),
	}
}

// Start returns the event channel and closes it when ctx is cancelled.
func (r *Recognizer) Start(ctx context.Context) (<-chan types.Event, error) {
	go func() {
		<-ctx.Done()
		r.Close()
	}()
	return r.events, nil
}

// Push delivers one recognition result from the transport.
// Results pushed after Close are dropped.
func (r *Recognizer) Push(ev types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- ev:
	default:
		// consumer stalled, drop rather than block the transport
	}
}

// SendAudio is a no-op: transcription happens on the client.
func (r *Recognizer) SendAudio(ctx context.Context, audio []byte) error {
	return nil
}

// Close ends the stream. Idempotent.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	close(r.events)
	return nil
}
