// Package tasks provides the AI sales task bounded context: the scan
// pipeline (candidates, synthesis, dedup) and the task lifecycle.
package tasks

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"salespulse_backend/internal/events"
	apphttp "salespulse_backend/internal/http"
	"salespulse_backend/internal/tasks/handler"
	"salespulse_backend/internal/tasks/ports"
	"salespulse_backend/internal/tasks/repository"
	"salespulse_backend/internal/tasks/service"
	"salespulse_backend/internal/tasks/synthesizer"
	"salespulse_backend/platform/ai"
	"salespulse_backend/platform/logger"
	"salespulse_backend/platform/validator"
)

// Module is the tasks bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the tasks module. provider and archiver
// may be nil; scans then run on the rule-based source without archiving.
func NewModule(
	pool *pgxpool.Pool,
	provider ai.Provider,
	maxTokens int,
	archiver ports.SnapshotArchiver,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)

	var aiSource synthesizer.TaskSource
	if provider != nil {
		aiSource = synthesizer.NewAISource(provider, maxTokens, log)
	}

	svc := service.New(repo, aiSource, synthesizer.NewRuleSource(), archiver, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tasks"
}

// Service returns the service layer for external use (scheduler jobs).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts task routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/tasks")
	group.POST("/scan", ctx.ScanRateLimiter.RateLimit(), m.handler.Scan)
	group.GET("/scans", m.handler.ListScans)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/dismiss", m.handler.Dismiss)
	group.POST("/:id/complete", m.handler.Complete)
	group.POST("/:id/snooze", m.handler.Snooze)

	ctx.Admin.GET("/ai-settings", m.handler.GetSettings)
	ctx.Admin.PUT("/ai-settings", m.handler.UpdateSettings)
	ctx.Admin.GET("/ai-usage", m.handler.Usage)
}
