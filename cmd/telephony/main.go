package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/ionutpopescu27/ByteMeHackaton/internal/config"
	httpmiddleware "github.com/ionutpopescu27/ByteMeHackaton/internal/http/middleware"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/observability/metrics"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/telephony"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telephony adapter", "env", cfg.Env, "port", cfg.TelephonyPort, "backend", cfg.BackendBaseURL)

	handler := telephony.NewHandler(telephony.Config{
		Sessions:     telephony.NewSessions(cfg.SessionTTL),
		Backend:      telephony.NewBackendClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger.Component("backend")),
		Metrics:      metrics.NewAssistantMetrics(nil),
		Logger:       logger.Component("telephony"),
		Collection:   cfg.DocsCollection,
		HoldMusicURL: cfg.HoldMusicURL,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.TelephonyPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("telephony listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down telephony adapter...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("telephony stopped")
}
