package routing

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"contextllm-be/pkg/embedding"
	"contextllm-be/pkg/llm"
)

// Classifier picks the backend family that should answer a prompt.
// Implementations never return an error: every internal failure
// resolves to DefaultFamily.
type Classifier interface {
	Classify(ctx context.Context, prompt string) Family
}

// shortCircuitKeywords reroute scheduling and mail phrasing straight to
// the default family. Content routing for those intents belongs to the
// intent detector, not the classifier.
var shortCircuitKeywords = []string{
	"appointment", "schedule", "booking", "meeting", "calendar",
	"reserve", "book", "arrange", "set up", "organize",
	"tomorrow", "next week", "this week", "today at",
	"2 pm", "3 pm", "4 pm", "5 pm", "morning", "afternoon", "evening",
	"email", "send email", "mail",
}

func shortCircuits(prompt string) bool {
	promptLower := strings.ToLower(prompt)
	for _, keyword := range shortCircuitKeywords {
		if strings.Contains(promptLower, keyword) {
			return true
		}
	}
	return false
}

// EmbeddingClassifier selects the category whose label vector has the
// highest dot product against the prompt vector. Label vectors are
// encoded once, lazily, on the first classification.
type EmbeddingClassifier struct {
	catalog  *Catalog
	provider embedding.EmbeddingProvider
	logger   *log.Logger

	once         sync.Once
	labelVectors [][]float32
	encodeErr    error
}

func NewEmbeddingClassifier(catalog *Catalog, provider embedding.EmbeddingProvider, logger *log.Logger) *EmbeddingClassifier {
	return &EmbeddingClassifier{
		catalog:  catalog,
		provider: provider,
		logger:   logger,
	}
}

func (c *EmbeddingClassifier) encodeLabels() {
	labels := c.catalog.Labels()
	vectors := make([][]float32, 0, len(labels))
	for _, label := range labels {
		res, err := c.provider.Generate(label, embedding.TaskTypeDocument)
		if err != nil {
			c.encodeErr = fmt.Errorf("encode category %q: %w", label, err)
			return
		}
		vectors = append(vectors, res.Embedding.Values)
	}
	c.labelVectors = vectors
}

func (c *EmbeddingClassifier) Classify(ctx context.Context, prompt string) Family {
	if shortCircuits(prompt) {
		return DefaultFamily
	}
	if c.catalog.Len() == 0 {
		return DefaultFamily
	}

	c.once.Do(c.encodeLabels)
	if c.encodeErr != nil {
		c.logger.Printf("[WARN] Category encoding failed, using default family: %v", c.encodeErr)
		return DefaultFamily
	}

	res, err := c.provider.Generate(prompt, embedding.TaskTypeQuery)
	if err != nil {
		c.logger.Printf("[WARN] Prompt encoding failed, using default family: %v", err)
		return DefaultFamily
	}

	// Vectors are normalized, so dot product is cosine similarity.
	// First maximum wins; labels are sorted so the tie-break is stable.
	bestIdx := -1
	bestScore := float32(0)
	for i, vec := range c.labelVectors {
		score := dot(res.Embedding.Values, vec)
		if bestIdx == -1 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx == -1 {
		return DefaultFamily
	}

	family, ok := c.catalog.FamilyFor(c.catalog.Labels()[bestIdx])
	if !ok {
		return DefaultFamily
	}
	return family
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// CompletionClassifier asks a general-purpose completion service to
// name the backend family directly, with the catalog rendered into the
// system instructions.
type CompletionClassifier struct {
	provider llm.Provider
	catalog  *Catalog
	logger   *log.Logger
}

const classifierSystemPrompt = `You are an expert at classifying user queries into the most appropriate task categories for LLM selection.

You should output ONLY one of the following (without explanation):
- "gpt"
- "gemini"
- "claude"
- "groq"

Selection rules:
- gpt: use for general purpose queries, math, or when broad knowledge is needed
- claude: use for code-related queries
- groq: use for speed or when a low-latency response is preferred
- gemini: use for reasoning-heavy or complex thought tasks

Examples:
user: what is 123 + 456?
output: gpt

user: write me a python function to sort a list
output: claude

user: give me a quick summary of the news
output: groq

user: solve this logic puzzle for me
output: gemini`

func NewCompletionClassifier(provider llm.Provider, catalog *Catalog, logger *log.Logger) *CompletionClassifier {
	return &CompletionClassifier{
		provider: provider,
		catalog:  catalog,
		logger:   logger,
	}
}

func (c *CompletionClassifier) instructions() string {
	labels := c.catalog.Labels()
	if len(labels) == 0 {
		return classifierSystemPrompt
	}
	var sb strings.Builder
	sb.WriteString(classifierSystemPrompt)
	sb.WriteString("\n\nAvailable task categories:\n")
	for _, label := range labels {
		sb.WriteString("- ")
		sb.WriteString(label)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (c *CompletionClassifier) Classify(ctx context.Context, prompt string) Family {
	if shortCircuits(prompt) {
		return DefaultFamily
	}

	response, err := c.provider.Generate(ctx, prompt,
		llm.WithSystem(c.instructions()),
		llm.WithTemperature(0.001),
		llm.WithMaxTokens(50),
	)
	if err != nil {
		c.logger.Printf("[WARN] Classification call failed, using default family: %v", err)
		return DefaultFamily
	}

	answer := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), `"`))
	if IsKnownFamily(answer) {
		return Family(answer)
	}
	if family, ok := c.catalog.FamilyFor(answer); ok {
		return family
	}

	c.logger.Printf("[WARN] Classifier returned unknown category %q, using default family", answer)
	return DefaultFamily
}
