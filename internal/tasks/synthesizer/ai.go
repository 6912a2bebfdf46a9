package synthesizer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"salespulse_backend/internal/tasks/repository"
	"salespulse_backend/platform/ai"
	"salespulse_backend/platform/logger"
)

// aiTemperature is kept low so the provider sticks to the snapshot instead
// of inventing entities.
const aiTemperature = 0.2

// AISource generates tasks through an AI completion provider.
type AISource struct {
	provider  ai.Provider
	maxTokens int
	log       *logger.Logger
}

// NewAISource creates the AI-backed task source.
func NewAISource(provider ai.Provider, maxTokens int, log *logger.Logger) *AISource {
	return &AISource{provider: provider, maxTokens: maxTokens, log: log}
}

var _ TaskSource = (*AISource)(nil)

// aiTask is the wire schema the provider is asked to emit.
type aiTask struct {
	TaskType            string                       `json:"taskType"`
	Priority            string                       `json:"priority"`
	Title               string                       `json:"title"`
	Description         string                       `json:"description"`
	Rationale           string                       `json:"rationale"`
	EntityType          string                       `json:"entityType"`
	EntityID            string                       `json:"entityId"`
	SuggestedActions    []repository.SuggestedAction `json:"suggestedActions"`
	PotentialValueCents int64                        `json:"potentialValueCents"`
	RiskLevel           string                       `json:"riskLevel"`
	Confidence          int                          `json:"confidence"`
}

// Generate sends the candidate snapshot to the provider and parses its
// response. Any failure (transport, malformed output, no usable tasks)
// returns an error so the caller can fall back to the rule source.
func (s *AISource) Generate(ctx context.Context, candidates repository.CandidateSet) (Result, error) {
	prompt := BuildPrompt(candidates)

	completion, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: prompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: aiTemperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ai completion: %w", err)
	}

	usage := &Usage{
		Provider:     s.provider.Name(),
		InputTokens:  int64(completion.InputTokens),
		OutputTokens: int64(completion.OutputTokens),
	}
	snapshot := &Snapshot{Prompt: prompt, RawResponse: completion.Content}

	raw, err := ExtractJSONArray(completion.Content)
	if err != nil {
		return Result{}, fmt.Errorf("parse ai response: %w", err)
	}

	var parsed []aiTask
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Result{}, fmt.Errorf("unmarshal ai tasks: %w", err)
	}

	drafts := make([]DraftTask, 0, len(parsed))
	for _, task := range parsed {
		draft, ok := s.normalize(task)
		if !ok {
			continue
		}
		drafts = append(drafts, draft)
	}

	return Result{
		Tasks:    drafts,
		Source:   SourceAI,
		Usage:    usage,
		Snapshot: snapshot,
	}, nil
}

// normalize validates one provider task against the closed enums and drops
// entries the schema does not allow. A partially usable response is still a
// usable response.
func (s *AISource) normalize(task aiTask) (DraftTask, bool) {
	switch task.TaskType {
	case repository.TypeFollowUpLead, repository.TypeFollowUpQuote, repository.TypePaymentReminder,
		repository.TypeAtRiskCustomer, repository.TypeReactivateCustomer:
	default:
		s.log.Warn("dropping ai task with unknown type", "taskType", task.TaskType)
		return DraftTask{}, false
	}

	switch task.EntityType {
	case repository.EntityCustomer, repository.EntityLead, repository.EntityInvoice, repository.EntityQuote:
	default:
		s.log.Warn("dropping ai task with unknown entity type", "entityType", task.EntityType)
		return DraftTask{}, false
	}

	entityID, err := uuid.Parse(task.EntityID)
	if err != nil {
		s.log.Warn("dropping ai task with invalid entity id", "entityId", task.EntityID)
		return DraftTask{}, false
	}

	if task.Title == "" {
		return DraftTask{}, false
	}

	priority := task.Priority
	switch priority {
	case repository.PriorityLow, repository.PriorityMedium, repository.PriorityHigh, repository.PriorityCritical:
	default:
		priority = repository.PriorityMedium
	}

	confidence := task.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return DraftTask{
		TaskType:            task.TaskType,
		Priority:            priority,
		Title:               task.Title,
		Description:         task.Description,
		Rationale:           task.Rationale,
		EntityType:          task.EntityType,
		EntityID:            entityID,
		SuggestedActions:    task.SuggestedActions,
		PotentialValueCents: task.PotentialValueCents,
		RiskLevel:           task.RiskLevel,
		Confidence:          confidence,
	}, true
}
