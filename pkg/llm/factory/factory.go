package factory

import (
	"fmt"

	"contextllm-be/pkg/llm"
	"contextllm-be/pkg/llm/anthropic"
	"contextllm-be/pkg/llm/gemini"
	"contextllm-be/pkg/llm/groq"
	"contextllm-be/pkg/llm/openai"
)

// Credentials carries the API key and optional model override for each
// backend family.
type Credentials struct {
	APIKeys map[string]string // family -> key
	Models  map[string]string // family -> model id override
}

// envVarNames maps each family to the env var its key is expected in,
// used only for error messages.
var envVarNames = map[string]string{
	"gpt":    "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
	"groq":   "GROQ_API_KEY",
}

// NewProvider builds the completion provider for a backend family.
// A missing API key is a configuration error and fails construction;
// it is never defaulted away.
func NewProvider(family string, creds Credentials) (llm.Provider, error) {
	key := creds.APIKeys[family]
	if key == "" {
		envVar := envVarNames[family]
		if envVar == "" {
			return nil, fmt.Errorf("unsupported backend family: %s", family)
		}
		return nil, fmt.Errorf("API key not found for %s: set %s", family, envVar)
	}

	model := creds.Models[family]
	switch family {
	case "gpt":
		return openai.NewOpenAIProvider(key, model), nil
	case "gemini":
		return gemini.NewGeminiProvider(key, model), nil
	case "claude":
		return anthropic.NewAnthropicProvider(key, model), nil
	case "groq":
		return groq.NewGroqProvider(key, model), nil
	default:
		return nil, fmt.Errorf("unsupported backend family: %s", family)
	}
}

// NewToolProvider builds the tool-calling-capable provider used by the
// agent path. Only the gpt family supports tool invocation here.
func NewToolProvider(creds Credentials) (llm.ToolProvider, error) {
	key := creds.APIKeys["gpt"]
	if key == "" {
		return nil, fmt.Errorf("API key not found for gpt: set OPENAI_API_KEY")
	}
	model := creds.Models["agent"]
	if model == "" {
		model = "gpt-4o-mini"
	}
	return openai.NewOpenAIProvider(key, model), nil
}
