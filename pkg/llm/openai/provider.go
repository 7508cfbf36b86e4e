package openai

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

// OpenAIProvider implements llm.ToolProvider against the OpenAI chat
// completions API. It is the only backend the agent path can use, since
// the other families are wired for free text only.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.ToolProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (internal to this package) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Tools       []toolDef     `json:"tools,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolDef struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  toolParameters `json:"parameters"`
}

type toolParameters struct {
	Type       string                   `json:"type"`
	Properties map[string]toolParamSpec `json:"properties"`
	Required   []string                 `json:"required"`
}

type toolParamSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	resp, err := p.complete(ctx, history, nil, options...)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (p *OpenAIProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.ToolSchema, options ...llm.Option) (*llm.ToolResult, error) {
	return p.complete(ctx, history, tools, options...)
}

func (p *OpenAIProvider) complete(ctx context.Context, history []llm.Message, tools []llm.ToolSchema, options ...llm.Option) (*llm.ToolResult, error) {
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
	for _, t := range tools {
		reqPayload.Tools = append(reqPayload.Tools, mapToolSchema(t))
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	choice := chatResp.Choices[0].Message
	result := &llm.ToolResult{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		call := llm.ToolCall{
			Name:      tc.Function.Name,
			Arguments: map[string]string{},
		}
		// Arguments arrive as a JSON object string; values may be any
		// scalar type, so coerce everything to string.
		var raw map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &raw); err != nil {
			return nil, fmt.Errorf("unmarshal tool arguments for %s: %w", tc.Function.Name, err)
		}
		for k, v := range raw {
			call.Arguments[k] = fmt.Sprintf("%v", v)
		}
		result.ToolCalls = append(result.ToolCalls, call)
	}

	return result, nil
}

func mapToolSchema(t llm.ToolSchema) toolDef {
	props := make(map[string]toolParamSpec, len(t.Parameters))
	for name, param := range t.Parameters {
		props[name] = toolParamSpec{
			Type:        param.Type,
			Description: param.Description,
		}
	}
	return toolDef{
		Type: "function",
		Function: toolFunction{
			Name:        t.Name,
			Description: t.Description,
			Parameters: toolParameters{
				Type:       "object",
				Properties: props,
				Required:   t.Required,
			},
		},
	}
}
