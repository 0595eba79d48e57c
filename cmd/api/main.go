package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medloop/practice-assistant/internal/api/router"
	"github.com/medloop/practice-assistant/internal/assistant"
	appconfig "github.com/medloop/practice-assistant/internal/config"
	"github.com/medloop/practice-assistant/internal/observability/metrics"
	"github.com/medloop/practice-assistant/internal/roster"
	"github.com/medloop/practice-assistant/internal/scheduling"
	"github.com/medloop/practice-assistant/internal/session"
	"github.com/medloop/practice-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting practice-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: Postgres when configured, in-memory demo roster otherwise.
	var (
		directory roster.Directory
		store     scheduling.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		directory = roster.NewRepository(pool)
		store = scheduling.NewRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, running with in-memory demo data")
		directory, store = demoData()
	}

	// Sessions: Redis when configured, in-process otherwise.
	var sessions session.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, sessions are in-process only")
		sessions = session.NewMemoryStore()
	}

	assistantMetrics := metrics.NewAssistantMetrics(prometheus.DefaultRegisterer)

	committer := scheduling.NewCommitter(store, logger,
		time.Duration(cfg.BookingBufferMinutes)*time.Minute)
	engine := assistant.NewEngine(directory, committer, assistantMetrics, logger).
		WithVisitDuration(cfg.DefaultVisitMinutes)

	// Model tier is optional: without an API key every turn runs on the
	// deterministic pipeline.
	var model assistant.TurnProcessor
	if cfg.GeminiAPIKey != "" {
		llmClient, err := assistant.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = llmClient.Close() }()

		model = assistant.NewModelProcessor(llmClient, engine, cfg.ModelTimeout, logger)
		logger.Info("model tier enabled", "model_id", cfg.GeminiModelID)
	} else {
		logger.Info("GEMINI_API_KEY not set, model tier disabled")
	}

	orchestrator := assistant.NewOrchestrator(model, engine, assistantMetrics, logger)
	assistantHandler := assistant.NewHandler(orchestrator, sessions, logger)

	r := router.New(&router.Config{
		Logger:           logger,
		AssistantHandler: assistantHandler,
		MetricsHandler:   promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// demoData seeds a small roster so the server is usable without a
// database.
func demoData() (roster.Directory, scheduling.Store) {
	const orgID = "demo"

	dir := roster.NewMemoryDirectory()
	dir.AddPatient(orgID, roster.Patient{ID: uuid.New(), FirstName: "Jane", LastName: "Doe"})
	dir.AddPatient(orgID, roster.Patient{ID: uuid.New(), FirstName: "Omar", LastName: "Younus"})
	dir.AddPatient(orgID, roster.Patient{ID: uuid.New(), FirstName: "Maria", LastName: "Garcia"})
	dir.AddProvider(orgID, roster.Provider{ID: uuid.New(), FirstName: "Sarah", LastName: "Adams", Department: "cardiology", Role: "doctor"})
	dir.AddProvider(orgID, roster.Provider{ID: uuid.New(), FirstName: "James", LastName: "Lin", Department: "dermatology", Role: "doctor"})

	return dir, scheduling.NewMemoryStore()
}
