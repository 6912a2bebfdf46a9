package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Customer represents a customer account within a tenant.
type Customer struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	Email       *string
	Phone       *string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Activity represents a recorded interaction with a customer.
// Activity types include calls, emails, meetings, and customer_issue
// records that feed the issue sub-score.
type Activity struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	ActivityType string
	Subject      string
	Notes        *string
	OccurredAt   time.Time
	CreatedAt    time.Time
}

// ListParams contains filters for listing customers.
type ListParams struct {
	TenantID uuid.UUID
	Search   string
	Status   string
	Offset   int
	Limit    int
}

// RecordActivityParams contains parameters for recording a customer activity.
type RecordActivityParams struct {
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	ActivityType string
	Subject      string
	Notes        *string
	OccurredAt   time.Time
}

// CustomerReader provides read operations for customers.
type CustomerReader interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Customer, error)
	List(ctx context.Context, params ListParams) ([]Customer, int, error)
	Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// ActivityStore provides operations on customer activities.
type ActivityStore interface {
	RecordActivity(ctx context.Context, params RecordActivityParams) (Activity, error)
	ListActivities(ctx context.Context, tenantID, customerID uuid.UUID, limit int) ([]Activity, error)
}

// Repository combines all customer repository operations.
type Repository interface {
	CustomerReader
	ActivityStore
}
