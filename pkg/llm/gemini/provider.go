package gemini

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

// GeminiProvider implements llm.Provider against the Google Generative
// Language API.
type GeminiProvider struct {
	apiKey string
	model  string
	client *http.Client
}

var _ llm.Provider = &GeminiProvider{}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Temperature: 0.5,
		MaxTokens:   1000,
		Model:       p.model,
	}
	for _, o := range options {
		o(opts)
	}

	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		// Gemini uses "model" where others use "assistant"
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		if role == "system" {
			if opts.System == "" {
				opts.System = msg.Content
			}
			continue
		}
		contents = append(contents, geminiContent{
			Parts: []geminiPart{{Text: msg.Content}},
			Role:  role,
		})
	}

	reqPayload := generateRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}
	if opts.System != "" {
		reqPayload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: opts.System}},
		}
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
		opts.Model,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("gemini api returned error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
