// Package types holds the recognizer contract shared by all adapters.
package types

import "context"

// Event is a single recognition result delivered in stream order.
// Err is set on stream failures; text events carry Err == nil.
type Event struct {
	Text       string
	Final      bool
	Confidence float64
	Err        error
}

// Recognizer is a live speech-to-text stream.
type Recognizer interface {
	// Start opens the stream and returns the ordered event channel.
	// The channel is closed when the stream ends or ctx is cancelled.
	Start(ctx context.Context) (<-chan Event, error)

	// SendAudio feeds raw audio bytes to the provider.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the stream and releases resources. Idempotent.
	Close() error
}
