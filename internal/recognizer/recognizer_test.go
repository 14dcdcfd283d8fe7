package recognizer

import (
	"context"
	"testing"

	"speech-practice-service/internal/config"
	"speech-practice-service/internal/recognizer/mock"
	"speech-practice-service/internal/recognizer/remote"
)

func TestFactorySelection(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
	}{
		{"default is browser", "", "browser"},
		{"explicit browser", "browser", "browser"},
		{"mock", "mock", "mock"},
		{"case insensitive", "MOCK", "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, provider, err := NewFactory(config.RecognizerConfig{Provider: tt.provider})
			if err != nil {
				t.Fatalf("NewFactory: %v", err)
			}
			if provider != tt.want {
				t.Errorf("expected provider %q, got %q", tt.want, provider)
			}
			r, err := f(context.Background())
			if err != nil {
				t.Fatalf("factory: %v", err)
			}
			defer r.Close()

			switch tt.want {
			case "browser":
				if _, ok := r.(*remote.Recognizer); !ok {
					t.Errorf("expected remote recognizer, got %T", r)
				}
			case "mock":
				if _, ok := r.(*mock.Recognizer); !ok {
					t.Errorf("expected mock recognizer, got %T", r)
				}
			}
		})
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, _, err := NewFactory(config.RecognizerConfig{Provider: "whisper"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryGoogleRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, _, err := NewFactory(config.RecognizerConfig{Provider: "google"}); err == nil {
		t.Error("expected error when credentials are absent")
	}
}
