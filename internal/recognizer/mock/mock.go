// Package mock provides a scripted recognizer for running without cloud
// credentials. It simulates realistic speech-to-text behavior with
// progressive partial results and exactly one final result per utterance.
package mock

import (
	"context"
	"sync"
	"time"

	"speech-practice-service/internal/recognizer/types"
)

// Utterance is a scripted utterance with progressive transcripts.
type Utterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterances provides sample utterances for simulation.
var DefaultUtterances = []Utterance{
	{
		Partials:   []string{"Bonjour", "Bonjour je", "Bonjour je voudrais"},
		Final:      "Bonjour je voudrais pratiquer mon français",
		Confidence: 0.94,
	},
	{
		Partials:   []string{"Hola", "Hola como"},
		Final:      "Hola como estas hoy",
		Confidence: 0.97,
	},
	{
		Partials:   []string{"I have", "I have been", "I have been practicing"},
		Final:      "I have been practicing every day this week",
		Confidence: 0.91,
	},
	{
		Partials:   []string{"Danke"},
		Final:      "Danke schön",
		Confidence: 0.98,
	},
}

// Recognizer implements types.Recognizer with scripted responses.
// Each audio frame advances the script: first the partials, then the
// final result with a short simulated processing delay.
type Recognizer struct {
	mu           sync.Mutex
	events       chan types.Event
	utterance    Utterance
	partialIndex int
	finalSent    bool
	closed       bool
	pending      sync.WaitGroup
}

var (
	utteranceCounter int
	counterMu        sync.Mutex
)

// New creates a mock recognizer cycling through the default utterances.
func New() *Recognizer {
	counterMu.Lock()
	idx := utteranceCounter % len(DefaultUtterances)
	utteranceCounter++
	counterMu.Unlock()

	return NewScripted(DefaultUtterances[idx])
}

// NewScripted creates a mock recognizer replaying one specific utterance.
func NewScripted(u Utterance) *Recognizer {
	return &Recognizer{
		utterance: u,
		events:    make(chan types.Event, 16),
	}
}

// Start returns the event channel. The script is driven by SendAudio.
func (r *Recognizer) Start(ctx context.Context) (<-chan types.Event, error) {
	go func() {
		<-ctx.Done()
		r.Close()
	}()
	return r.events, nil
}

// SendAudio advances the script by one step per audio frame.
func (r *Recognizer) SendAudio(ctx context.Context, audio []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	if r.partialIndex < len(r.utterance.Partials) {
		partial := r.utterance.Partials[r.partialIndex]
		r.partialIndex++

		r.pending.Add(1)
		go func(text string) {
			defer r.pending.Done()
			time.Sleep(20 * time.Millisecond)
			r.emit(types.Event{Text: text})
		}(partial)
	} else if !r.finalSent {
		r.finalSent = true

		r.pending.Add(1)
		go func(u Utterance) {
			defer r.pending.Done()
			time.Sleep(40 * time.Millisecond)
			r.emit(types.Event{Text: u.Final, Final: true, Confidence: u.Confidence})
		}(r.utterance)
	}

	return nil
}

func (r *Recognizer) emit(ev types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- ev:
	default:
		// consumer stalled, drop rather than block the script
	}
}

// Close ends the stream. If the final was never reached the stream just
// closes, mirroring a recognizer torn down mid-utterance.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.pending.Wait()
	close(r.events)
	return nil
}
