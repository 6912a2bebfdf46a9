// Package customers provides the customers bounded context module.
// It exposes the customer records and activity history that feed the
// health-scoring and task-scan pipelines.
package customers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"salespulse_backend/internal/customers/handler"
	"salespulse_backend/internal/customers/repository"
	"salespulse_backend/internal/customers/service"
	apphttp "salespulse_backend/internal/http"
	"salespulse_backend/platform/logger"
	"salespulse_backend/platform/validator"
)

// Module is the customers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the customers module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts customer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/customers")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.GET("/:id/activities", m.handler.ListActivities)
	group.POST("/:id/activities", m.handler.RecordActivity)
}
