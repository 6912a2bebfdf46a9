package http

import (
	"context"

	"salespulse_backend/platform/config"
	"salespulse_backend/platform/events"
	"salespulse_backend/platform/logger"
)

// HealthChecker is implemented by dependencies that can report readiness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App aggregates everything the router needs to serve the API.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       HealthChecker
	EventBus events.Bus
	Modules  []Module
}
