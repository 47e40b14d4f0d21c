// Package router assembles the backend HTTP API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/http/handlers"
	httpmiddleware "github.com/ionutpopescu27/ByteMeHackaton/internal/http/middleware"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Assistant          *handlers.AssistantHandler
	Documents          *handlers.DocumentsHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitPerSecond enables per-IP rate limiting when > 0.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all backend routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", cfg.Assistant.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Post("/rsp", cfg.Assistant.Answer)
	r.Post("/rsp_db", cfg.Assistant.AnswerWithDocs)
	r.Post("/q_db", cfg.Assistant.Query)
	r.Post("/tts", cfg.Assistant.Synthesize)
	r.Post("/speech", cfg.Assistant.Transcribe)
	r.Post("/populate_chroma", cfg.Assistant.Populate)
	r.Post("/stop_call", cfg.Assistant.StopCall)
	r.Post("/conv", cfg.Assistant.Conversations)

	if cfg.Documents != nil {
		r.Post("/upload_and_index", cfg.Documents.UploadAndIndex)
		r.Get("/documents", cfg.Documents.List)
		r.Get("/documents/recent", cfg.Documents.Recent)
		r.Delete("/documents/{id}", cfg.Documents.Delete)
	}

	return r
}
