package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVICE_NAME", "HTTP_PORT", "OPENAI_API_KEY", "OPENAI_CHAT_MODEL",
		"OPENAI_TTS_MODEL", "OPENAI_TEMPERATURE",
		"RECOGNIZER_PROVIDER", "RECOGNIZER_LANGUAGE_CODE",
		"RECOGNIZER_SAMPLE_RATE_HZ", "RECOGNIZER_INTERIM_RESULTS",
		"SESSION_SILENCE_DELAY", "SESSION_MAX_TRANSCRIPT_BYTES",
		"SESSION_MAX_AUDIO_BYTES", "SESSION_MAX_DURATION",
		"WORDBANK_BACKEND", "WORDBANK_FILE", "WORDBANK_SQLITE",
		"RECORDINGS_DIR", "RECORDINGS_SQLITE", "EXPORT_DIR",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_TRANSCRIPT",
		"KAFKA_TOPIC_REPLY", "SERVICE_PRINCIPAL",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_PORT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Name != "speech-practice-service" {
		t.Errorf("expected default service name, got %s", cfg.Service.Name)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.OpenAI.ChatModel != "gpt-4" {
		t.Errorf("expected default chat model 'gpt-4', got %s", cfg.OpenAI.ChatModel)
	}
	if cfg.OpenAI.TTSModel != "tts-1" {
		t.Errorf("expected default TTS model 'tts-1', got %s", cfg.OpenAI.TTSModel)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.Recognizer.Provider != "browser" {
		t.Errorf("expected default recognizer provider 'browser', got %s", cfg.Recognizer.Provider)
	}
	if cfg.Recognizer.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.Recognizer.LanguageCode)
	}
	if cfg.Recognizer.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Recognizer.SampleRateHz)
	}
	if !cfg.Recognizer.InterimResults {
		t.Error("expected interim results enabled by default")
	}
	if cfg.Session.SilenceDelay != 2*time.Second {
		t.Errorf("expected default silence delay 2s, got %v", cfg.Session.SilenceDelay)
	}
	if cfg.Session.MaxTranscriptBytes != 64*1024 {
		t.Errorf("expected default max transcript bytes 64KiB, got %d", cfg.Session.MaxTranscriptBytes)
	}
	if cfg.Session.MaxAudioBytes != 16*1024*1024 {
		t.Errorf("expected default max audio bytes 16MiB, got %d", cfg.Session.MaxAudioBytes)
	}
	if cfg.Session.MaxDuration != 10*time.Minute {
		t.Errorf("expected default max duration 10m, got %v", cfg.Session.MaxDuration)
	}
	if cfg.WordBank.Backend != "memory" {
		t.Errorf("expected default word bank backend 'memory', got %s", cfg.WordBank.Backend)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicTranscript != "practice.transcript.final" {
		t.Errorf("unexpected default transcript topic %s", cfg.Kafka.TopicTranscript)
	}
	if cfg.Kafka.Principal != "svc-speech-practice" {
		t.Errorf("unexpected default principal %s", cfg.Kafka.Principal)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SESSION_SILENCE_DELAY", "500ms")
	t.Setenv("WORDBANK_BACKEND", "sqlite")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("RECOGNIZER_PROVIDER", "google")
	t.Setenv("RECOGNIZER_INTERIM_RESULTS", "false")

	cfg := Load()

	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected API key override, got %s", cfg.OpenAI.APIKey)
	}
	if cfg.Session.SilenceDelay != 500*time.Millisecond {
		t.Errorf("expected silence delay 500ms, got %v", cfg.Session.SilenceDelay)
	}
	if cfg.WordBank.Backend != "sqlite" {
		t.Errorf("expected backend 'sqlite', got %s", cfg.WordBank.Backend)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Recognizer.Provider != "google" {
		t.Errorf("expected provider 'google', got %s", cfg.Recognizer.Provider)
	}
	if cfg.Recognizer.InterimResults {
		t.Error("expected interim results disabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)

	t.Setenv("SESSION_SILENCE_DELAY", "not-a-duration")
	t.Setenv("RECOGNIZER_SAMPLE_RATE_HZ", "fast")
	t.Setenv("KAFKA_ENABLED", "maybe")

	cfg := Load()

	if cfg.Session.SilenceDelay != 2*time.Second {
		t.Errorf("expected fallback silence delay 2s, got %v", cfg.Session.SilenceDelay)
	}
	if cfg.Recognizer.SampleRateHz != 16000 {
		t.Errorf("expected fallback sample rate 16000, got %d", cfg.Recognizer.SampleRateHz)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected fallback Kafka disabled")
	}
}
