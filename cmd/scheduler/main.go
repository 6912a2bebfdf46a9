package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"salespulse_backend/internal/adapters/storage"
	"salespulse_backend/internal/email"
	"salespulse_backend/internal/events"
	"salespulse_backend/internal/health"
	"salespulse_backend/internal/scheduler"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	provider := initAIProvider(ctx, cfg, log)
	archiver := initSnapshotArchiver(ctx, cfg, log)

	// Digest emails are sent from the worker process so scheduled scans
	// notify the tenant the same way manual ones do.
	digest := email.NewDigestSender(cfg, tasksrepo.New(pool), log)
	digest.RegisterHandlers(eventBus)

	// Worker-side module wiring (no HTTP handlers required).
	healthModule := health.NewModule(pool, eventBus, log)
	tasksModule := tasks.NewModule(pool, provider, cfg.GetAIMaxTokens(), archiver, eventBus, val, log)

	sweepInterval := getDurationEnv("SNOOZE_SWEEP_INTERVAL", 5*time.Minute)
	sweeper := scheduler.NewSnoozeSweeper(tasksModule.Service(), log, sweepInterval)
	go sweeper.Run(ctx)

	dispatchInterval := getDurationEnv("SCAN_DISPATCH_INTERVAL", 24*time.Hour)
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	dispatcher := scheduler.NewScanDispatcher(tasksModule.Service(), client, log, dispatchInterval)
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, tasksModule.Service(), healthModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
		return client
	default:
		log.Warn("unknown AI provider", "provider", cfg.GetAIProvider())
		return nil
	}
}

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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
