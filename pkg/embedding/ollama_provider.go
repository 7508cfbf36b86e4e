package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models
// (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: baseURL,
		Model:   model,
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	// TaskType is ignored by Ollama, kept for interface compatibility

	reqBody := ollamaEmbeddingRequest{
		Model:  p.Model,
		Prompt: text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/embeddings", p.BaseURL)
	resp, err := http.Post(endpoint, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embedding error: %s", string(bodyBytes))
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, err
	}

	values := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		values[i] = float32(v)
	}

	// Cosine distance in pgvector and dot-product classification both
	// require unit-length vectors
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: NormalizeVector(values),
		},
	}, nil
}

// NormalizeVector normalizes a vector to unit length (magnitude = 1)
func NormalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
