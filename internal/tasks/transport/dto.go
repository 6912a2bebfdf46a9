// Package transport defines request and response DTOs for the tasks module.
package transport

import (
	"github.com/google/uuid"

	"salespulse_backend/internal/tasks/repository"
)

// ScanRequest contains the body for triggering a scan.
type ScanRequest struct {
	TriggerType string `json:"triggerType" validate:"omitempty,oneof=manual scheduled webhook"`
}

// ScanResultResponse summarizes one completed scan.
type ScanResultResponse struct {
	ScanID              uuid.UUID `json:"scanId"`
	Source              string    `json:"source"`
	EntitiesScanned     int       `json:"entitiesScanned"`
	TasksCreated        int       `json:"tasksCreated"`
	TasksUpdated        int       `json:"tasksUpdated"`
	TasksClosed         int       `json:"tasksClosed"`
	TotalTasksGenerated int       `json:"totalTasksGenerated"`
}

// TaskResponse is the API representation of a sales task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	ScanID      *uuid.UUID `json:"scanId"`
	TaskType    string     `json:"taskType"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rationale   string     `json:"rationale"`

	EntityType *string    `json:"entityType"`
	EntityID   *uuid.UUID `json:"entityId"`

	SuggestedActions    []repository.SuggestedAction `json:"suggestedActions"`
	PotentialValueCents int64                        `json:"potentialValueCents"`
	RiskLevel           string                       `json:"riskLevel"`
	DueDate             *string                      `json:"dueDate"`
	Confidence          int                          `json:"confidence"`

	SnoozedUntil *string `json:"snoozedUntil"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// TaskListResponse wraps a paginated list of tasks.
type TaskListResponse struct {
	Items    []TaskResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ListTasksRequest contains query parameters for listing tasks.
type ListTasksRequest struct {
	Status   string `form:"status"`
	TaskType string `form:"taskType"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// SnoozeRequest contains the body for snoozing a task.
type SnoozeRequest struct {
	Until string `json:"until" validate:"required"`
}

// ScanLogResponse is the API representation of a scan log entry.
type ScanLogResponse struct {
	ID              uuid.UUID `json:"id"`
	TriggerType     string    `json:"triggerType"`
	Status          string    `json:"status"`
	Source          string    `json:"source"`
	EntitiesScanned int       `json:"entitiesScanned"`
	TasksCreated    int       `json:"tasksCreated"`
	TasksUpdated    int       `json:"tasksUpdated"`
	TasksClosed     int       `json:"tasksClosed"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	StartedAt       string    `json:"startedAt"`
	CompletedAt     *string   `json:"completedAt"`
}

// ScanLogListResponse wraps a list of scan logs.
type ScanLogListResponse struct {
	Items []ScanLogResponse `json:"items"`
}

// AISettingsResponse is the API representation of tenant AI settings.
type AISettingsResponse struct {
	AIEnabled   bool   `json:"aiEnabled"`
	DigestEmail string `json:"digestEmail"`
}

// UpdateAISettingsRequest contains the body for updating tenant AI settings.
type UpdateAISettingsRequest struct {
	AIEnabled   bool   `json:"aiEnabled"`
	DigestEmail string `json:"digestEmail" validate:"omitempty,email"`
}

// UsageDayResponse is one day of AI token usage.
type UsageDayResponse struct {
	Date         string `json:"date"`
	Provider     string `json:"provider"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	RequestCount int    `json:"requestCount"`
}

// UsageListResponse wraps a range of daily usage records.
type UsageListResponse struct {
	Items []UsageDayResponse `json:"items"`
}
