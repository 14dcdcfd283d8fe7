// Package httpapi exposes the service's HTTP and websocket interface.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"speech-practice-service/internal/auth"
	"speech-practice-service/internal/config"
	"speech-practice-service/internal/events"
	"speech-practice-service/internal/gateway"
	"speech-practice-service/internal/observability/logging"
	"speech-practice-service/internal/recognizer"
	"speech-practice-service/internal/recognizer/remote"
	"speech-practice-service/internal/recordings"
	"speech-practice-service/internal/wordbank"
)

// ReplyGenerator is the AI gateway contract the handlers depend on.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, transcript, language string) (*gateway.Reply, error)
}

// Server holds the handler dependencies.
type Server struct {
	gateway    ReplyGenerator
	words      wordbank.Store
	recordings *recordings.Store
	publisher  *events.Publisher
	identity   auth.Identity
	recognizer recognizer.Factory
	sessionCfg config.SessionConfig
	exportDir  string
	log        zerolog.Logger
}

// Config wires a Server.
type Config struct {
	Gateway    ReplyGenerator
	Words      wordbank.Store
	Recordings *recordings.Store
	Publisher  *events.Publisher
	Identity   auth.Identity
	Recognizer recognizer.Factory
	Session    config.SessionConfig
	ExportDir  string
}

// NewServer constructs the API server.
func NewServer(cfg Config) *Server {
	if cfg.Recognizer == nil {
		cfg.Recognizer = func(context.Context) (recognizer.Recognizer, error) {
			return remote.New(), nil
		}
	}
	return &Server{
		gateway:    cfg.Gateway,
		words:      cfg.Words,
		recordings: cfg.Recordings,
		publisher:  cfg.Publisher,
		identity:   cfg.Identity,
		recognizer: cfg.Recognizer,
		sessionCfg: cfg.Session,
		exportDir:  cfg.ExportDir,
		log:        logging.WithComponent("httpapi"),
	}
}

// Router constructs the HTTP router for the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(s.identity))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-response", s.handleGenerateResponse)
		r.Post("/fluency-report", s.handleFluencyReport)
		r.Get("/word-bank", s.handleListWords)
		r.Post("/word-bank", s.handleAddWord)
		r.Delete("/word-bank/{id}", s.handleRemoveWord)
		r.Post("/save-recording", s.handleSaveRecording)
		r.Get("/export-word-bank", s.handleExportWordBank)
	})

	// Live capture session
	r.Get("/ws/session", s.handleSession)

	// Generated export artifacts
	if s.exportDir != "" {
		r.Handle("/exports/*", http.StripPrefix("/exports/", http.FileServer(http.Dir(s.exportDir))))
	}

	return r
}

// HTTPServer wraps the router in an http.Server with sane timeouts.
func (s *Server) HTTPServer(port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
