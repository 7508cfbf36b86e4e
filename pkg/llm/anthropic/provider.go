package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contextllm-be/pkg/llm"
)

// AnthropicProvider implements llm.Provider against the Anthropic
// messages API.
type AnthropicProvider struct {
	apiKey string
	model  string
	client *http.Client
}

var _ llm.Provider = &AnthropicProvider{}

const baseURL = "https://api.anthropic.com/v1"

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = "claude-opus-4-20250514"
	}
	return &AnthropicProvider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type messagesRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Temperature: 0.5,
		MaxTokens:   1000,
		Model:       p.model,
	}
	for _, o := range options {
		o(opts)
	}

	// Anthropic takes system instructions as a top-level field, not a message
	messages := make([]anthropicMessage, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		if role == "system" {
			if opts.System == "" {
				opts.System = msg.Content
			}
			continue
		}
		messages = append(messages, anthropicMessage{Role: role, Content: msg.Content})
	}

	reqPayload := messagesRequest{
		Model:       opts.Model,
		System:      opts.System,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/messages", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(bodyBytes, &msgResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic api returned error: %s", msgResp.Error.Message)
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic returned empty content")
	}

	return msgResp.Content[0].Text, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
