// Package gemini implements the ai.Provider interface on the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"salespulse_backend/platform/ai"

	"google.golang.org/genai"
)

// Config for the Gemini provider.
type Config struct {
	APIKey string
	Model  string
}

// Client calls the Gemini API through the official genai SDK.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed completion provider.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{client: client, model: cfg.Model}, nil
}

// Name identifies the provider.
func (c *Client) Name() string {
	return "gemini"
}

// Complete performs a single completion call. System messages become the
// system instruction; the remaining turns are sent as user content.
func (c *Client) Complete(ctx context.Context, req ai.CompletionRequest) (ai.Completion, error) {
	var systemParts []string
	var userParts []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case ai.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		default:
			userParts = append(userParts, msg.Content)
		}
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(systemParts) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n"), genai.RoleUser)
	}

	contents := genai.Text(strings.Join(userParts, "\n"))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return ai.Completion{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return ai.Completion{}, fmt.Errorf("gemini: empty response")
	}

	completion := ai.Completion{Content: text}
	if resp.UsageMetadata != nil {
		completion.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		completion.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return completion, nil
}

// Compile-time check that Client implements ai.Provider.
var _ ai.Provider = (*Client)(nil)
