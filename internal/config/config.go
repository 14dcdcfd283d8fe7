// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Name     string
	HTTPPort string
}

// OpenAIConfig holds the chat-completion and text-to-speech settings.
type OpenAIConfig struct {
	APIKey      string
	ChatModel   string
	TTSModel    string
	Temperature float32
}

// RecognizerConfig selects and tunes the speech recognizer adapter.
type RecognizerConfig struct {
	Provider       string // "browser", "google" or "mock"
	LanguageCode   string
	SampleRateHz   int
	InterimResults bool
}

// SessionConfig tunes the capture session controller.
type SessionConfig struct {
	SilenceDelay       time.Duration
	MaxTranscriptBytes int64
	MaxAudioBytes      int64
	MaxDuration        time.Duration
}

// WordBankConfig selects the word bank backend.
type WordBankConfig struct {
	Backend    string // "memory", "file" or "sqlite"
	FilePath   string
	SQLitePath string
}

// RecordingsConfig holds paths for persisted session artifacts.
type RecordingsConfig struct {
	Dir        string
	SQLitePath string
	ExportDir  string
}

// KafkaConfig holds event publisher settings.
type KafkaConfig struct {
	Enabled         bool
	Brokers         []string
	TopicTranscript string
	TopicReply      string
	Principal       string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

// Configuration is the root configuration for the service.
type Configuration struct {
	Service       ServiceConfig
	OpenAI        OpenAIConfig
	Recognizer    RecognizerConfig
	Session       SessionConfig
	WordBank      WordBankConfig
	Recordings    RecordingsConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Name:     envOrDefault("SERVICE_NAME", "speech-practice-service"),
			HTTPPort: envOrDefault("HTTP_PORT", "8080"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			ChatModel:   envOrDefault("OPENAI_CHAT_MODEL", "gpt-4"),
			TTSModel:    envOrDefault("OPENAI_TTS_MODEL", "tts-1"),
			Temperature: float32(envFloat("OPENAI_TEMPERATURE", 0.7)),
		},
		Recognizer: RecognizerConfig{
			Provider:       envOrDefault("RECOGNIZER_PROVIDER", "browser"),
			LanguageCode:   envOrDefault("RECOGNIZER_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   envInt("RECOGNIZER_SAMPLE_RATE_HZ", 16000),
			InterimResults: envBool("RECOGNIZER_INTERIM_RESULTS", true),
		},
		Session: SessionConfig{
			SilenceDelay:       envDuration("SESSION_SILENCE_DELAY", 2*time.Second),
			MaxTranscriptBytes: envInt64("SESSION_MAX_TRANSCRIPT_BYTES", 64*1024),
			MaxAudioBytes:      envInt64("SESSION_MAX_AUDIO_BYTES", 16*1024*1024),
			MaxDuration:        envDuration("SESSION_MAX_DURATION", 10*time.Minute),
		},
		WordBank: WordBankConfig{
			Backend:    envOrDefault("WORDBANK_BACKEND", "memory"),
			FilePath:   envOrDefault("WORDBANK_FILE", "data/word-bank.json"),
			SQLitePath: envOrDefault("WORDBANK_SQLITE", "data/wordbank.db"),
		},
		Recordings: RecordingsConfig{
			Dir:        envOrDefault("RECORDINGS_DIR", "data/recordings"),
			SQLitePath: envOrDefault("RECORDINGS_SQLITE", "data/recordings.db"),
			ExportDir:  envOrDefault("EXPORT_DIR", "data/exports"),
		},
		Kafka: KafkaConfig{
			Enabled:         envBool("KAFKA_ENABLED", false),
			Brokers:         envList("KAFKA_BROKERS"),
			TopicTranscript: envOrDefault("KAFKA_TOPIC_TRANSCRIPT", "practice.transcript.final"),
			TopicReply:      envOrDefault("KAFKA_TOPIC_REPLY", "practice.reply"),
			Principal:       envOrDefault("SERVICE_PRINCIPAL", "svc-speech-practice"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
