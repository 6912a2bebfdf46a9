package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salespulse_backend/internal/health/service"
	"salespulse_backend/platform/httpkit"
)

// Handler handles HTTP requests for customer health scores.
type Handler struct {
	svc *service.Service
}

const msgInvalidID = "invalid customer ID"

// New creates a new health handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Get retrieves a customer's health score, computing it on first touch.
// GET /api/v1/customers/:id/health
func (h *Handler) Get(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c, identity)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), tenantID, customerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Recalculate recomputes a customer's health score on demand.
// POST /api/v1/customers/:id/health/recalculate
func (h *Handler) Recalculate(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c, identity)
	if !ok {
		return
	}

	result, err := h.svc.Recalculate(c.Request.Context(), tenantID, customerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// List retrieves the tenant's health scores, worst-first.
// GET /api/v1/health-scores?riskTier=critical
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c, identity)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID, c.Query("riskTier"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
