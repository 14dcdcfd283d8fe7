package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speech-practice-service/internal/auth"
	"speech-practice-service/internal/config"
	"speech-practice-service/internal/events"
	"speech-practice-service/internal/gateway"
	"speech-practice-service/internal/httpapi"
	"speech-practice-service/internal/observability"
	"speech-practice-service/internal/observability/logging"
	"speech-practice-service/internal/recognizer"
	"speech-practice-service/internal/recordings"
	"speech-practice-service/internal/wordbank"
)

func main() {
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})
	log := logging.Logger()

	// Kafka publisher with separate topics for transcripts and AI replies
	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicTranscript: cfg.Kafka.TopicTranscript,
		TopicReply:      cfg.Kafka.TopicReply,
		Principal:       cfg.Kafka.Principal,
	})
	defer publisher.Close()

	words, err := wordbank.Open(cfg.WordBank)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.WordBank.Backend).Msg("Opening word bank failed")
	}
	defer words.Close()

	recorder, err := recordings.New(cfg.Recordings.Dir, cfg.Recordings.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Opening recordings store failed")
	}
	defer recorder.Close()

	gw := gateway.New(gateway.Config{
		APIKey:      cfg.OpenAI.APIKey,
		ChatModel:   cfg.OpenAI.ChatModel,
		TTSModel:    cfg.OpenAI.TTSModel,
		Temperature: cfg.OpenAI.Temperature,
	})
	if !gw.Configured() {
		log.Warn().Msg("OPENAI_API_KEY not set, AI responses will fail per request")
	}

	factory, provider, err := recognizer.NewFactory(cfg.Recognizer)
	if err != nil {
		log.Fatal().Err(err).Msg("Selecting recognizer provider failed")
	}
	log.Info().Str("provider", provider).Msg("Recognizer provider selected")

	identity := auth.NewTokenVerifier("")
	defer identity.Close()

	api := httpapi.NewServer(httpapi.Config{
		Gateway:    gw,
		Words:      words,
		Recordings: recorder,
		Publisher:  publisher,
		Identity:   identity,
		Recognizer: factory,
		Session:    cfg.Session,
		ExportDir:  cfg.Recordings.ExportDir,
	})
	srv := api.HTTPServer(cfg.Service.HTTPPort)

	obs := observability.NewServer(":"+cfg.Observability.MetricsPort,
		observability.Check{
			Name: "wordbank",
			Probe: func(ctx context.Context) error {
				_, err := words.List(ctx, "readiness-probe")
				return err
			},
		},
		observability.Check{
			Name: "recordings",
			Probe: func(ctx context.Context) error {
				_, err := recorder.List(ctx, "readiness-probe")
				return err
			},
		},
	)
	obs.Start()

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("Speech practice service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := obs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Observability shutdown failed")
	}
}
