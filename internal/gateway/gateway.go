// Package gateway forwards transcripts to the OpenAI chat-completion API
// and, best-effort, synthesizes the reply as speech.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"speech-practice-service/internal/observability/metrics"
)

// Errors for invalid requests. These are caller mistakes, not upstream
// failures, and no network call is attempted when they apply.
var (
	ErrNoTranscript  = errors.New("no transcript provided")
	ErrAPIKeyMissing = errors.New("API key missing")
)

// GatewayError wraps any upstream failure (timeout, non-2xx, malformed
// body) behind a single error type for the caller.
type GatewayError struct {
	Step string // "chat" or "speech"
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ai gateway %s call failed: %v", e.Step, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Reply is the result of one AI round trip. Audio is nil when speech
// synthesis failed or was skipped; the text reply is always present on
// success.
type Reply struct {
	Text  string
	Audio []byte
	Voice string
}

// Config holds gateway settings.
type Config struct {
	APIKey      string
	ChatModel   string
	TTSModel    string
	Temperature float32
	BaseURL     string // override for tests
}

// Gateway is the boundary component in front of the OpenAI API.
type Gateway struct {
	client  *openai.Client
	cfg     Config
	metrics *metrics.Metrics
}

// New constructs a gateway. A missing API key is allowed here so the
// service can boot without one; GenerateReply reports the configuration
// error per call.
func New(cfg Config) *Gateway {
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = string(openai.TTSModel1)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}

	return &Gateway{
		client:  client,
		cfg:     cfg,
		metrics: metrics.DefaultMetrics,
	}
}

// Configured reports whether an API credential is present.
func (g *Gateway) Configured() bool {
	return g.client != nil
}

// voiceForLanguage maps practice languages to TTS voices. Unknown
// languages fall back to the default voice.
func voiceForLanguage(language string) openai.SpeechVoice {
	switch strings.ToLower(language) {
	case "french":
		return openai.VoiceAlloy
	case "spanish":
		return openai.VoiceNova
	case "german":
		return openai.VoiceEcho
	case "italian":
		return openai.VoiceShimmer
	case "japanese":
		return openai.VoiceNova
	default:
		return openai.VoiceNova
	}
}

// GenerateReply sends the transcript as the user turn of a conversation
// in the target language and returns the first reply choice. Speech
// synthesis is best-effort: on TTS failure the text reply is returned
// with no audio.
func (g *Gateway) GenerateReply(ctx context.Context, transcript, language string) (*Reply, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrNoTranscript
	}
	if g.client == nil {
		return nil, ErrAPIKeyMissing
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.ChatModel,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You are a helpful assistant who responds in %s.", language),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: transcript,
			},
		},
	})
	g.metrics.RecordGatewayCall(language, "chat", err, time.Since(start).Seconds())
	if err != nil {
		return nil, &GatewayError{Step: "chat", Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		err = errors.New("empty completion response")
		return nil, &GatewayError{Step: "chat", Err: err}
	}
	reply := &Reply{Text: resp.Choices[0].Message.Content}

	voice := voiceForLanguage(language)
	reply.Voice = string(voice)

	ttsStart := time.Now()
	speech, err := g.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(g.cfg.TTSModel),
		Input: reply.Text,
		Voice: voice,
	})
	g.metrics.RecordGatewayCall(language, "speech", err, time.Since(ttsStart).Seconds())
	if err != nil {
		// Partial success: keep the text reply, report no audio.
		g.metrics.RecordSpeechSynthesisFailure()
		log.Warn().Err(err).Str("language", language).Msg("Speech synthesis failed, returning text-only reply")
		return reply, nil
	}
	defer speech.Close()

	audio, err := io.ReadAll(speech)
	if err != nil {
		g.metrics.RecordSpeechSynthesisFailure()
		log.Warn().Err(err).Str("language", language).Msg("Reading synthesized audio failed, returning text-only reply")
		return reply, nil
	}
	reply.Audio = audio

	return reply, nil
}
