package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salespulse_backend/internal/customers/repository"
	"salespulse_backend/internal/customers/transport"
	"salespulse_backend/platform/apperr"
	"salespulse_backend/platform/logger"
)

// Service provides business logic for customers and their activities.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new customers service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a customer by ID.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.CustomerResponse, error) {
	c, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toCustomerResponse(c), nil
}

// List retrieves customers with search, status filter, and pagination.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListCustomersRequest) (transport.CustomerListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListParams{
		TenantID: tenantID,
		Search:   req.Search,
		Status:   req.Status,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.CustomerListResponse{}, err
	}

	responses := make([]transport.CustomerResponse, 0, len(items))
	for _, c := range items {
		responses = append(responses, toCustomerResponse(c))
	}

	return transport.CustomerListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// RecordActivity records a new activity against a customer.
// Issue activities (activityType "customer_issue") lower the customer's
// issue sub-score on the next health recalculation.
func (s *Service) RecordActivity(ctx context.Context, tenantID, customerID uuid.UUID, req transport.RecordActivityRequest) (transport.ActivityResponse, error) {
	exists, err := s.repo.Exists(ctx, tenantID, customerID)
	if err != nil {
		return transport.ActivityResponse{}, err
	}
	if !exists {
		return transport.ActivityResponse{}, apperr.NotFound("customer not found")
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.OccurredAt)
		if err != nil {
			return transport.ActivityResponse{}, apperr.BadRequest("occurredAt must be RFC3339")
		}
		occurredAt = parsed
	}

	a, err := s.repo.RecordActivity(ctx, repository.RecordActivityParams{
		TenantID:     tenantID,
		CustomerID:   customerID,
		ActivityType: req.ActivityType,
		Subject:      req.Subject,
		Notes:        req.Notes,
		OccurredAt:   occurredAt,
	})
	if err != nil {
		return transport.ActivityResponse{}, err
	}

	return toActivityResponse(a), nil
}

// ListActivities retrieves the most recent activities for a customer.
func (s *Service) ListActivities(ctx context.Context, tenantID, customerID uuid.UUID) (transport.ActivityListResponse, error) {
	items, err := s.repo.ListActivities(ctx, tenantID, customerID, 50)
	if err != nil {
		return transport.ActivityListResponse{}, err
	}

	responses := make([]transport.ActivityResponse, 0, len(items))
	for _, a := range items {
		responses = append(responses, toActivityResponse(a))
	}
	return transport.ActivityListResponse{Items: responses}, nil
}

func toCustomerResponse(c repository.Customer) transport.CustomerResponse {
	return transport.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func toActivityResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:           a.ID,
		CustomerID:   a.CustomerID,
		ActivityType: a.ActivityType,
		Subject:      a.Subject,
		Notes:        a.Notes,
		OccurredAt:   a.OccurredAt.Format(time.RFC3339),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}
