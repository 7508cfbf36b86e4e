package groq

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

// GroqProvider implements llm.Provider against the Groq API, which is
// OpenAI-compatible on the wire.
type GroqProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.Provider = &GroqProvider{}

func NewGroqProvider(apiKey, model string) *GroqProvider {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return &GroqProvider{
		apiKey:  apiKey,
		baseURL: "https://api.groq.com/openai/v1",
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *GroqProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Temperature: 0.5,
		MaxTokens:   1000,
		Model:       p.model,
	}
	for _, o := range options {
		o(opts)
	}

	messages := make([]chatMessage, 0, len(history)+1)
	if opts.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.System})
	}
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}

	reqPayload := chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("groq api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *GroqProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
