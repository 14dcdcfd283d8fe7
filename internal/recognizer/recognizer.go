// Package recognizer defines the capability interface for speech recognizers.
package recognizer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"speech-practice-service/internal/config"
	"speech-practice-service/internal/recognizer/google"
	"speech-practice-service/internal/recognizer/mock"
	"speech-practice-service/internal/recognizer/remote"
	"speech-practice-service/internal/recognizer/types"
)

// Event re-exports the recognition event type.
type Event = types.Event

// Recognizer is a live speech-to-text stream. Start returns a channel of
// ordered recognition events; the channel is closed when the stream ends
// or the context is cancelled. SendAudio feeds raw audio to providers
// that transcribe server-side; adapters that receive text from elsewhere
// treat it as a no-op.
type Recognizer = types.Recognizer

// Factory constructs a fresh recognizer stream for one session.
type Factory func(ctx context.Context) (Recognizer, error)

// NewFactory selects a recognizer implementation at startup based on
// configuration and available credentials. Selection happens exactly
// once; sessions created later never re-detect capabilities.
func NewFactory(cfg config.RecognizerConfig) (Factory, string, error) {
	switch strings.ToLower(cfg.Provider) {
	case "google":
		if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			return nil, "", fmt.Errorf("recognizer provider %q requires GOOGLE_APPLICATION_CREDENTIALS", cfg.Provider)
		}
		f := func(ctx context.Context) (Recognizer, error) {
			return google.New(ctx, google.Config{
				LanguageCode:   cfg.LanguageCode,
				SampleRateHz:   cfg.SampleRateHz,
				InterimResults: cfg.InterimResults,
			})
		}
		return f, "google", nil
	case "browser", "":
		// Recognition happens in the client; the stream is fed by
		// pushed results rather than audio.
		f := func(ctx context.Context) (Recognizer, error) {
			return remote.New(), nil
		}
		return f, "browser", nil
	case "mock":
		f := func(ctx context.Context) (Recognizer, error) {
			return mock.New(), nil
		}
		return f, "mock", nil
	default:
		return nil, "", fmt.Errorf("unknown recognizer provider %q", cfg.Provider)
	}
}
