// Package synthesizer turns scan candidates into task suggestions.
// Two interchangeable sources exist: an AI-backed one and a deterministic
// rule-based one. The scan service prefers the AI source and falls back to
// the rules on any failure, so a scan always produces some result.
package synthesizer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salespulse_backend/internal/tasks/repository"
)

// Source names recorded on the scan log.
const (
	SourceAI    = "ai"
	SourceRules = "rules"
)

// DraftTask is a generated task suggestion before dedup and persistence.
type DraftTask struct {
	TaskType    string
	Priority    string
	Title       string
	Description string
	Rationale   string

	EntityType string
	EntityID   uuid.UUID

	SuggestedActions    []repository.SuggestedAction
	PotentialValueCents int64
	RiskLevel           string
	DueDate             *time.Time
	Confidence          int
}

// Usage holds token counts from an AI provider call.
type Usage struct {
	Provider     string
	InputTokens  int64
	OutputTokens int64
}

// Snapshot captures the exact prompt and raw provider output of an AI run,
// kept for audit archiving.
type Snapshot struct {
	Prompt      string `json:"prompt"`
	RawResponse string `json:"rawResponse"`
	Model       string `json:"model,omitempty"`
}

// Result is one source's output for a scan.
type Result struct {
	Tasks  []DraftTask
	Source string
	// Usage is nil for the rule-based source.
	Usage *Usage
	// Snapshot is nil for the rule-based source.
	Snapshot *Snapshot
}

// TaskSource generates task suggestions from a candidate set.
type TaskSource interface {
	Generate(ctx context.Context, candidates repository.CandidateSet) (Result, error)
}
