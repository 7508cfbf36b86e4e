package dto

import "contextllm-be/pkg/routing"

type QueryRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	// Backend optionally pins a family, bypassing classification.
	Backend string `json:"backend,omitempty" validate:"omitempty,oneof=gpt gemini claude groq"`
}

type QueryResponse struct {
	Answer        string           `json:"answer"`
	ChosenBackend string           `json:"chosen_backend"`
	State         routing.Snapshot `json:"state"`
}

type StateResponse struct {
	State routing.Snapshot `json:"state"`
}
