package backend

import (
	"context"
	"fmt"
	"log"

	"contextllm-be/pkg/contextmgr"
	"contextllm-be/pkg/llm"
	"contextllm-be/pkg/routing"
)

// Default sampling configuration for direct chat answers.
const (
	defaultTemperature = 0.5
	defaultTokenLimit  = 1000
)

// Adapter wraps one completion backend behind the uniform chat
// contract: context in, text out, exchange fed back to the context
// manager. One instance per caller per family.
type Adapter struct {
	family       routing.Family
	callerId     string
	provider     llm.Provider
	contextMgr   *contextmgr.Manager
	logger       *log.Logger
	systemPrompt string
	temperature  float64
	tokenLimit   int
}

// NewAdapter fails fast on a missing caller identity. That is a
// configuration error and is intentionally not swallowed; everything
// downstream of construction degrades to marker text instead.
func NewAdapter(family routing.Family, callerId string, provider llm.Provider, contextMgr *contextmgr.Manager, logger *log.Logger) (*Adapter, error) {
	if callerId == "" {
		return nil, fmt.Errorf("caller identity is required for backend %s", family)
	}
	return &Adapter{
		family:       family,
		callerId:     callerId,
		provider:     provider,
		contextMgr:   contextMgr,
		logger:       logger,
		systemPrompt: PromptForFamily(family),
		temperature:  defaultTemperature,
		tokenLimit:   defaultTokenLimit,
	}, nil
}

// Generate answers a prompt with the adapter's backend. It always
// returns text: a provider failure comes back with the "Error: "
// marker, never as an error value, because the routing layer treats
// "got text back" as success.
func (a *Adapter) Generate(ctx context.Context, prompt string) string {
	augmented := prompt
	if retrieved := a.contextMgr.ExtractContext(ctx, prompt); retrieved != "" {
		augmented = fmt.Sprintf("Given the following context and previous message, answer the question: %s\n\n%s", retrieved, prompt)
	}

	response, err := a.provider.Generate(ctx, augmented,
		llm.WithSystem(a.systemPrompt),
		llm.WithTemperature(a.temperature),
		llm.WithMaxTokens(a.tokenLimit),
	)
	if err != nil {
		a.logger.Printf("[ERROR] Generation failed on %s for caller %s: %v", a.family, a.callerId, err)
		return fmt.Sprintf("Error: %v", err)
	}

	// Cache synchronously so the next extraction sees this exchange
	// even before the background upsert lands.
	a.contextMgr.SetExchange(prompt, response)
	a.contextMgr.Ingest(fmt.Sprintf("User: %s\nAssistant: %s", prompt, response))

	return response
}

// Family returns the backend family this adapter is bound to.
func (a *Adapter) Family() routing.Family {
	return a.family
}
