package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salespulse_backend/internal/adapters/storage"
	"salespulse_backend/internal/customers"
	"salespulse_backend/internal/email"
	"salespulse_backend/internal/events"
	"salespulse_backend/internal/health"
	apphttp "salespulse_backend/internal/http"
	"salespulse_backend/internal/http/router"
	"salespulse_backend/internal/tasks"
	"salespulse_backend/internal/tasks/ports"
	tasksrepo "salespulse_backend/internal/tasks/repository"
	"salespulse_backend/platform/ai"
	"salespulse_backend/platform/ai/gemini"
	"salespulse_backend/platform/ai/openaicompat"
	"salespulse_backend/platform/config"
	"salespulse_backend/platform/db"
	"salespulse_backend/platform/logger"
	"salespulse_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	provider := initAIProvider(ctx, cfg, log)
	archiver := initSnapshotArchiver(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Digest sender subscribes to scan events (not HTTP-facing)
	digest := email.NewDigestSender(cfg, tasksrepo.New(pool), log)
	digest.RegisterHandlers(eventBus)

	customersModule := customers.NewModule(pool, val, log)
	healthModule := health.NewModule(pool, eventBus, log)
	tasksModule := tasks.NewModule(pool, provider, cfg.GetAIMaxTokens(), archiver, eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		DB:       db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			customersModule,
			healthModule,
			tasksModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initAIProvider builds the configured completion provider. A nil provider is
// valid; scans then run on the rule-based source only.
func initAIProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) ai.Provider {
	if !cfg.IsAIConfigured() {
		log.Warn("AI provider not configured; scans use rule-based task generation")
		return nil
	}

	switch cfg.GetAIProvider() {
	case "gemini":
		client, err := gemini.New(ctx, gemini.Config{
			APIKey: cfg.GetGeminiAPIKey(),
			Model:  cfg.GetGeminiModel(),
		})
		if err != nil {
			log.Error("failed to initialize gemini provider", "error", err)
			return nil
		}
		log.Info("AI provider initialized", "provider", "gemini", "model", cfg.GetGeminiModel())
		return client
	case "openai-compat":
		client, err := openaicompat.New(openaicompat.Config{
			APIKey:  cfg.GetOpenAICompatAPIKey(),
			BaseURL: cfg.GetOpenAICompatBaseURL(),
			Model:   cfg.GetOpenAICompatModel(),
		})
		if err != nil {
			log.Error("failed to initialize openai-compat provider", "error", err)
			return nil
		}
		log.Info("AI provider initialized", "provider", "openai-compat", "model", cfg.GetOpenAICompatModel())
		return client
	default:
		log.Warn("unknown AI provider", "provider", cfg.GetAIProvider())
		return nil
	}
}

// initSnapshotArchiver builds the MinIO archiver when storage is configured.
func initSnapshotArchiver(ctx context.Context, cfg *config.Config, log *logger.Logger) ports.SnapshotArchiver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; scan snapshots will not be archived")
		return nil
	}

	archiver, err := storage.NewMinIOArchiver(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize snapshot archiver", "error", err)
		return nil
	}
	log.Info("snapshot archiver initialized", "bucket", cfg.GetMinioBucketScanSnapshots())
	return archiver
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
