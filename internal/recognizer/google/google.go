// Package google provides a Google Cloud Speech-to-Text recognizer.
package google

import (
	"context"
	"errors"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"speech-practice-service/internal/recognizer/types"
)

// Config holds streaming recognition settings.
type Config struct {
	LanguageCode   string
	SampleRateHz   int
	InterimResults bool
}

// Recognizer implements types.Recognizer using Google Cloud Speech-to-Text.
type Recognizer struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient
	cfg    Config

	mu     sync.Mutex
	events chan types.Event
	closed bool
}

// New creates a new Google recognizer.
// Requires the GOOGLE_APPLICATION_CREDENTIALS environment variable.
func New(ctx context.Context, cfg Config) (*Recognizer, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.SampleRateHz == 0 {
		cfg.SampleRateHz = 16000
	}
	return &Recognizer{client: c, cfg: cfg}, nil
}

// Start opens the streaming session, sends the initial config and spawns
// the receive loop that turns responses into ordered events.
func (r *Recognizer) Start(ctx context.Context) (<-chan types.Event, error) {
	stream, err := r.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, err
	}
	r.stream = stream
	r.events = make(chan types.Event, 16)

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(r.cfg.SampleRateHz),
					LanguageCode:    r.cfg.LanguageCode,
				},
				InterimResults: r.cfg.InterimResults,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	go r.receive()
	return r.events, nil
}

// SendAudio sends audio bytes to Google Speech-to-Text.
func (r *Recognizer) SendAudio(ctx context.Context, audio []byte) error {
	return r.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

// receive drains the gRPC stream and forwards results in delivery order.
func (r *Recognizer) receive() {
	defer close(r.events)
	for {
		resp, err := r.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || r.isClosed() {
				return
			}
			r.events <- types.Event{Err: err}
			return
		}

		for _, res := range resp.Results {
			if len(res.Alternatives) == 0 {
				continue
			}
			alt := res.Alternatives[0]
			r.events <- types.Event{
				Text:       alt.Transcript,
				Final:      res.IsFinal,
				Confidence: float64(alt.Confidence),
			}
		}
	}
}

func (r *Recognizer) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close half-closes the send side; the receive loop exits on EOF.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	var err error
	if r.stream != nil {
		err = r.stream.CloseSend()
	}
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}
