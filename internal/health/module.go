// Package health provides the customer health scoring bounded context.
// It aggregates invoice, activity, and order history into a weighted
// 0-100 score with a discrete risk tier.
package health

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"salespulse_backend/internal/events"
	"salespulse_backend/internal/health/handler"
	"salespulse_backend/internal/health/repository"
	"salespulse_backend/internal/health/service"
	apphttp "salespulse_backend/internal/http"
	"salespulse_backend/platform/logger"
)

// Module is the health bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the health module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "health"
}

// Service returns the service layer for external use (scheduler jobs).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts health scoring routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/customers/:id/health", m.handler.Get)
	ctx.Protected.POST("/customers/:id/health/recalculate", m.handler.Recalculate)
	ctx.Protected.GET("/health-scores", m.handler.List)
}
