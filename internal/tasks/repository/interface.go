package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task types form a closed enum; the dedup key and the rule generator both
// depend on these exact values.
const (
	TypeFollowUpLead       = "follow_up_lead"
	TypeFollowUpQuote      = "follow_up_quote"
	TypePaymentReminder    = "payment_reminder"
	TypeAtRiskCustomer     = "at_risk_customer"
	TypeReactivateCustomer = "reactivate_customer"
)

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Task statuses. Pending and snoozed are the active states that participate
// in dedup matching; dismissed and completed are terminal.
const (
	StatusPending   = "pending"
	StatusSnoozed   = "snoozed"
	StatusDismissed = "dismissed"
	StatusCompleted = "completed"
)

// Entity types a task can link to.
const (
	EntityCustomer = "customer"
	EntityLead     = "lead"
	EntityInvoice  = "invoice"
	EntityQuote    = "quote"
)

// Scan statuses.
const (
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
)

// SuggestedAction is one recommended step attached to a task.
type SuggestedAction struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Task is a persisted sales suggestion.
type Task struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	ScanID   *uuid.UUID

	TaskType    string
	Priority    string
	Status      string
	Title       string
	Description string
	Rationale   string

	EntityType *string
	EntityID   *uuid.UUID

	SuggestedActions    []SuggestedAction
	PotentialValueCents int64
	RiskLevel           string
	DueDate             *time.Time
	Confidence          int

	SnoozedUntil *time.Time
	DismissedAt  *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpsertTaskParams carries one generated task into the dedup/upsert path.
type UpsertTaskParams struct {
	TenantID uuid.UUID
	ScanID   uuid.UUID

	TaskType    string
	Priority    string
	Title       string
	Description string
	Rationale   string

	EntityType *string
	EntityID   *uuid.UUID

	SuggestedActions    []SuggestedAction
	PotentialValueCents int64
	RiskLevel           string
	DueDate             *time.Time
	Confidence          int
}

// ListTasksParams contains filters for listing tasks.
type ListTasksParams struct {
	TenantID uuid.UUID
	Status   string
	TaskType string
	Offset   int
	Limit    int
}

// ScanLog records one batch scan run.
type ScanLog struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	TriggerType     string
	Status          string
	Source          string
	EntitiesScanned int
	TasksCreated    int
	TasksUpdated    int
	TasksClosed     int
	ErrorMessage    string
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// CompleteScanParams carries the final counters for a successful scan.
type CompleteScanParams struct {
	ScanID          uuid.UUID
	Source          string
	EntitiesScanned int
	TasksCreated    int
	TasksUpdated    int
}

// AISettings holds per-tenant AI entitlement and notification settings.
type AISettings struct {
	TenantID    uuid.UUID
	AIEnabled   bool
	DigestEmail string
}

// UsageRecord is one day of AI token consumption for a tenant.
type UsageRecord struct {
	TenantID     uuid.UUID
	UsageDate    time.Time
	Provider     string
	InputTokens  int64
	OutputTokens int64
	RequestCount int
}

// TaskStore provides persistence for sales tasks.
type TaskStore interface {
	// FindActive looks up a pending or snoozed task matching the dedup key.
	FindActive(ctx context.Context, tenantID uuid.UUID, taskType string, entityType *string, entityID *uuid.UUID) (Task, bool, error)
	Insert(ctx context.Context, params UpsertTaskParams) (Task, error)
	// Refresh updates a matched active task in place with the latest scan's values.
	Refresh(ctx context.Context, taskID uuid.UUID, params UpsertTaskParams) (Task, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Task, error)
	List(ctx context.Context, params ListTasksParams) ([]Task, int, error)

	Dismiss(ctx context.Context, tenantID, id uuid.UUID) (Task, error)
	Complete(ctx context.Context, tenantID, id uuid.UUID) (Task, error)
	Snooze(ctx context.Context, tenantID, id uuid.UUID, until time.Time) (Task, error)
	// WakeExpiredSnoozes flips snoozed tasks whose snooze window has passed
	// back to pending, returning the number of tasks woken.
	WakeExpiredSnoozes(ctx context.Context) (int, error)

	// CountCritical counts active critical-priority tasks created or
	// refreshed by the given scan.
	CountCritical(ctx context.Context, tenantID, scanID uuid.UUID) (int, error)
}

// ScanLogStore provides persistence for scan logs.
type ScanLogStore interface {
	CreateScanLog(ctx context.Context, tenantID uuid.UUID, triggerType string) (ScanLog, error)
	CompleteScanLog(ctx context.Context, params CompleteScanParams) (ScanLog, error)
	FailScanLog(ctx context.Context, scanID uuid.UUID, errorMessage string) error
	ListScanLogs(ctx context.Context, tenantID uuid.UUID, limit int) ([]ScanLog, error)
}

// SettingsStore provides per-tenant AI settings.
type SettingsStore interface {
	GetAISettings(ctx context.Context, tenantID uuid.UUID) (AISettings, error)
	UpsertAISettings(ctx context.Context, settings AISettings) (AISettings, error)
	// ListAIEnabledTenants returns tenants entitled to scheduled scans.
	ListAIEnabledTenants(ctx context.Context) ([]uuid.UUID, error)
}

// UsageStore meters daily AI token consumption per tenant.
type UsageStore interface {
	RecordUsage(ctx context.Context, tenantID uuid.UUID, provider string, inputTokens, outputTokens int64) error
	ListUsage(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]UsageRecord, error)
}

// Repository combines all task repository operations.
type Repository interface {
	CandidateReader
	TaskStore
	ScanLogStore
	SettingsStore
	UsageStore
}
