package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	System      string // System instructions, prepended by the provider
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystem(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

// Provider defines the contract for any completion backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ToolProvider is implemented by backends that support structured tool
// invocation in addition to free text. The agent path requires it.
type ToolProvider interface {
	Provider

	// ChatWithTools sends a chat history plus callable tool schemas.
	// The result carries either free text or the selected tool calls.
	ChatWithTools(ctx context.Context, history []Message, tools []ToolSchema, options ...Option) (*ToolResult, error)
}

// ToolSchema declares one callable action with a strict argument contract
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]ToolParameter
	Required    []string
}

type ToolParameter struct {
	Type        string
	Description string
}

// ToolCall is a single tool invocation selected by the model
type ToolCall struct {
	Name      string
	Arguments map[string]string
}

// ToolResult is the union shape of a tool-capable completion: either the
// model selected one or more tools, or it answered in free text.
type ToolResult struct {
	Text      string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model selected any tool
func (r *ToolResult) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}
