package routing

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Generator is the uniform contract a backend adapter exposes to the
// router: text in, text out, failures carried as marker text.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// ConversationAgent is the agent-mode collaborator. Turn reports
// whether the sub-dialogue finished and control should return to the
// direct backend path.
type ConversationAgent interface {
	Activate(intent Intent)
	Turn(ctx context.Context, prompt string) (string, bool)
	TurnCount() int
	Reset()
}

// Snapshot is the mode state reported back to the caller after every
// routed turn.
type Snapshot struct {
	IsInAgentMode   bool   `json:"is_in_agent_mode"`
	OriginalBackend string `json:"original_backend"`
	ActiveBackend   string `json:"active_backend"`
	AgentTurnCount  int    `json:"agent_turn_count"`
	LastUserMessage string `json:"last_user_message"`
}

// Router coordinates one caller's conversation: it watches for
// side-effect intents while idle, hands active sub-dialogues to the
// agent, and sends everything else to the requested backend adapter.
//
// State is per instance; multi-tenant deployments hold one Router per
// caller identity. A mutex serializes turns since HTTP handlers may
// race for the same caller.
type Router struct {
	adapters   map[Family]Generator
	agent      ConversationAgent
	agentModel string
	logger     *log.Logger

	mu              sync.Mutex
	isInAgentMode   bool
	originalBackend Family
	activeBackend   string
	lastUserMessage string
}

// NewRouter wires a router over prebuilt per-family adapters. Adapter
// construction (and its fail-fast credential checks) happens upstream.
// agentModel is the tool-calling model identifier reported as the
// active backend while the agent is doing the work.
func NewRouter(adapters map[Family]Generator, agent ConversationAgent, agentModel string, logger *log.Logger) *Router {
	return &Router{
		adapters:   adapters,
		agent:      agent,
		agentModel: agentModel,
		logger:     logger,
	}
}

// Route answers one prompt with the requested backend family, unless an
// active or newly detected side-effect intent diverts the turn to the
// agent. It always returns text plus the post-turn state snapshot.
func (r *Router) Route(ctx context.Context, family Family, prompt string) (string, Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastUserMessage = prompt
	if r.originalBackend == "" {
		r.originalBackend = family
	}

	// Intent detection only runs while idle. While active the agent
	// owns the conversation regardless of what the prompt looks like.
	if !r.isInAgentMode {
		if intent := DetectIntent(prompt); intent != IntentNone {
			r.logger.Printf("[INFO] Detected %s intent, entering agent mode", intent)
			r.isInAgentMode = true
			r.agent.Activate(intent)
		}
	}

	if r.isInAgentMode {
		r.activeBackend = r.agentModel
		text, done := r.agent.Turn(ctx, prompt)
		if done {
			r.isInAgentMode = false
		}
		return text, r.snapshotLocked()
	}

	generator, ok := r.adapters[family]
	if !ok {
		r.logger.Printf("[WARN] No adapter for family %q, falling back to %s", family, DefaultFamily)
		family = DefaultFamily
		generator, ok = r.adapters[family]
		if !ok {
			return fmt.Sprintf("Error: no backend available for family %s", family), r.snapshotLocked()
		}
	}

	r.activeBackend = string(family)
	return generator.Generate(ctx, prompt), r.snapshotLocked()
}

// State returns the current mode snapshot without routing anything.
func (r *Router) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Reset clears the router state and cascades to the agent's draft and
// history.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isInAgentMode = false
	r.originalBackend = ""
	r.activeBackend = ""
	r.lastUserMessage = ""
	r.agent.Reset()
}

func (r *Router) snapshotLocked() Snapshot {
	turnCount := 0
	if r.isInAgentMode {
		turnCount = r.agent.TurnCount()
	}
	return Snapshot{
		IsInAgentMode:   r.isInAgentMode,
		OriginalBackend: string(r.originalBackend),
		ActiveBackend:   r.activeBackend,
		AgentTurnCount:  turnCount,
		LastUserMessage: r.lastUserMessage,
	}
}
