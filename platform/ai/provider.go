// Package ai defines the completion provider boundary used by the task
// synthesis pipeline. Implementations live in subpackages; callers depend
// only on this interface so the provider stays pluggable.
package ai

import "context"

// Message roles understood by every provider implementation.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of the prompt sent to the provider.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest carries the prompt and generation settings.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Completion is the provider's response. Token counts feed per-tenant
// daily usage metering; providers that do not report usage return zeros.
type Completion struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Provider is a pluggable language-model completion capability.
// Output is best effort: callers must treat the content as untrusted text
// and fall back to deterministic generation on any failure.
type Provider interface {
	// Name identifies the provider for logging and usage records.
	Name() string
	// Complete performs a single completion call.
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
