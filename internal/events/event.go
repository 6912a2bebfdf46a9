// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"salespulse_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Health Domain Events
// =============================================================================

// CustomerHealthRecalculated is published after a customer's health score is
// recomputed and persisted.
type CustomerHealthRecalculated struct {
	BaseEvent
	TenantID     uuid.UUID `json:"tenantId"`
	CustomerID   uuid.UUID `json:"customerId"`
	OverallScore int       `json:"overallScore"`
	RiskTier     string    `json:"riskTier"`
}

func (e CustomerHealthRecalculated) EventName() string { return "health.score.recalculated" }

// =============================================================================
// AI Task Domain Events
// =============================================================================

// ScanCompleted is published when an AI task scan finishes successfully.
// Subscribers use it for digest notifications; the scan itself never depends
// on them.
type ScanCompleted struct {
	BaseEvent
	TenantID      uuid.UUID `json:"tenantId"`
	ScanID        uuid.UUID `json:"scanId"`
	TriggerType   string    `json:"triggerType"`
	TasksCreated  int       `json:"tasksCreated"`
	TasksUpdated  int       `json:"tasksUpdated"`
	CriticalCount int       `json:"criticalCount"`
}

func (e ScanCompleted) EventName() string { return "tasks.scan.completed" }
