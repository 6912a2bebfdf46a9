// Package transport defines request and response DTOs for the customers module.
package transport

import "github.com/google/uuid"

// ListCustomersRequest contains query parameters for listing customers.
type ListCustomersRequest struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// RecordActivityRequest contains the body for recording a customer activity.
type RecordActivityRequest struct {
	ActivityType string  `json:"activityType" validate:"required,oneof=call email meeting note customer_issue"`
	Subject      string  `json:"subject" validate:"required,max=200"`
	Notes        *string `json:"notes" validate:"omitempty,max=5000"`
	OccurredAt   *string `json:"occurredAt" validate:"omitempty"`
}

// CustomerResponse is the API representation of a customer.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// CustomerListResponse wraps a paginated list of customers.
type CustomerListResponse struct {
	Items    []CustomerResponse `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ActivityResponse is the API representation of a customer activity.
type ActivityResponse struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   uuid.UUID `json:"customerId"`
	ActivityType string    `json:"activityType"`
	Subject      string    `json:"subject"`
	Notes        *string   `json:"notes"`
	OccurredAt   string    `json:"occurredAt"`
	CreatedAt    string    `json:"createdAt"`
}

// ActivityListResponse wraps a list of activities.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}
