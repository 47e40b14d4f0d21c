package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/api/router"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/assistant"
	appconfig "github.com/ionutpopescu27/ByteMeHackaton/internal/config"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/conversation"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/documents"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/http/handlers"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/intent"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/observability/metrics"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/provenance"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/qacache"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/rag"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/reports"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/speech"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting assistant API server", "env", cfg.Env, "port", cfg.Port)

	if cfg.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	openaiCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	openaiCfg.HTTPClient = &http.Client{Timeout: cfg.OpenAITimeout}
	openaiClient := openai.NewClientWithConfig(openaiCfg)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, sessions and cache run in memory", "error", err)
		redisClient = nil
	}
	cancel()

	vectorStore, err := rag.NewStore(cfg.VectorDBPath)
	if err != nil {
		logger.Error("failed to open vector store", "error", err)
		os.Exit(1)
	}
	defer vectorStore.Close()

	docStore, err := documents.OpenStore(cfg.DocumentsDBPath)
	if err != nil {
		logger.Error("failed to open documents store", "error", err)
		os.Exit(1)
	}
	defer docStore.Close()

	embedder := rag.NewEmbedder(openaiClient, cfg.OpenAIEmbeddingModel, cfg.EmbedRetryAttempts, logger)
	composer := rag.NewComposer(openaiClient, cfg.OpenAIChatModel, logger)
	ingestor := rag.NewIngestor(embedder, vectorStore, logger)
	llm := intent.NewOpenAIClient(openaiClient, cfg.OpenAIChatModel)

	seed(context.Background(), cfg, vectorStore, ingestor, logger)

	service := assistant.NewService(assistant.Options{
		Embedder:   embedder,
		Retriever:  vectorStore,
		Composer:   composer,
		Classifier: intent.NewClassifier(llm),
		Forms:      intent.NewFormGenerator(llm),
		Locator:    provenance.NewLocator(logger.Component("provenance")),
		Transcript: conversation.NewStore(db, logger.Component("conversation")),
		Sessions:   conversation.NewSessionStore(redisClient, cfg.SessionTTL),
		Cache:      qacache.New(redisClient, cfg.AnswerCacheTTL),
		Reports:    reports.NewWriter(cfg.ReportsDir),
		DocsDir:    cfg.UploadDir,
		Model:      cfg.OpenAIChatModel,
		Logger:     logger.Component("assistant"),
	})

	speechSvc := speech.NewService(openaiClient, cfg.OpenAITTSModel, cfg.OpenAITTSVoice, cfg.OpenAISTTModel, cfg.AudioDir, logger.Component("speech"))
	m := metrics.NewAssistantMetrics(nil)

	r := router.New(&router.Config{
		Logger:             logger,
		Assistant:          handlers.NewAssistantHandler(service, speechSvc, ingestor, m, logger.Component("handlers")),
		Documents:          handlers.NewDocumentsHandler(docStore, ingestor, cfg.UploadDir, logger.Component("documents")),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// seed loads the curated Q/A pairs and the bundled insurance PDF into their
// collections on first start. Failures are logged and skipped so the server
// still comes up.
func seed(ctx context.Context, cfg *appconfig.Config, store *rag.Store, ingestor *rag.Ingestor, logger *logging.Logger) {
	if ok, err := store.HasCollection(ctx, assistant.SeedCollection); err == nil && !ok {
		questions, answers, err := rag.LoadQASeed(cfg.SeedQAPath)
		if err != nil {
			logger.Warn("qa seed skipped", "error", err)
		} else if err := ingestor.IngestQA(ctx, assistant.SeedCollection, questions, answers); err != nil {
			logger.Warn("qa seed failed", "error", err)
		} else {
			logger.Info("seeded qa collection", "count", len(questions))
		}
	}

	if ok, err := store.HasCollection(ctx, cfg.DocsCollection); err == nil && !ok {
		if _, err := os.Stat(cfg.SeedPDFPath); err != nil {
			logger.Warn("pdf seed skipped", "error", err)
			return
		}
		chunks, err := ingestor.IngestPDF(ctx, cfg.SeedPDFPath, cfg.DocsCollection)
		if err != nil {
			logger.Warn("pdf seed failed", "error", err)
			return
		}
		logger.Info("seeded document collection", "collection", cfg.DocsCollection, "chunks", chunks)
	}
}
