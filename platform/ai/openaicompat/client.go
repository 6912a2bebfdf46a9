// Package openaicompat implements the ai.Provider interface against any
// OpenAI-compatible chat-completions endpoint.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"salespulse_backend/platform/ai"
)

// Config for an OpenAI-compatible provider.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client speaks the OpenAI chat-completions wire format.
type Client struct {
	config Config
	client *http.Client
}

// New creates an OpenAI-compatible completion provider.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: api key and base url are required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openaicompat: model is required")
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string {
	return "openai-compat"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error interface{} `json:"error"`
}

// Complete performs a single chat-completion call.
func (c *Client) Complete(ctx context.Context, req ai.CompletionRequest) (ai.Completion, error) {
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	payload := map[string]interface{}{
		"model":       c.config.Model,
		"messages":    messages,
		"temperature": float64(req.Temperature),
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return ai.Completion{}, fmt.Errorf("openaicompat: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.config.BaseURL, "/")+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return ai.Completion{}, fmt.Errorf("openaicompat: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return ai.Completion{}, fmt.Errorf("openaicompat: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ai.Completion{}, fmt.Errorf("openaicompat: decode response: %w", err)
	}
	if result.Error != nil {
		return ai.Completion{}, fmt.Errorf("openaicompat: api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return ai.Completion{}, fmt.Errorf("openaicompat: empty choices")
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return ai.Completion{}, fmt.Errorf("openaicompat: empty content")
	}

	return ai.Completion{
		Content:      content,
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
	}, nil
}

// Compile-time check that Client implements ai.Provider.
var _ ai.Provider = (*Client)(nil)
