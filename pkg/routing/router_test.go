package routing

import (
	"context"
	"testing"
)

type fakeGenerator struct {
	response string
	calls    int
	lastSent string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) string {
	f.calls++
	f.lastSent = prompt
	return f.response
}

type fakeAgent struct {
	responses []string
	doneAfter []bool
	turn      int
	intent    Intent
	activated int
	resets    int
}

func (f *fakeAgent) Activate(intent Intent) {
	f.intent = intent
	f.activated++
	f.turn = 0
}

func (f *fakeAgent) Turn(ctx context.Context, prompt string) (string, bool) {
	idx := f.turn
	f.turn++
	if idx >= len(f.responses) {
		return "ok", false
	}
	return f.responses[idx], f.doneAfter[idx]
}

func (f *fakeAgent) TurnCount() int {
	return f.turn
}

func (f *fakeAgent) Reset() {
	f.resets++
	f.turn = 0
}

func newTestRouter(gen Generator, agent ConversationAgent) *Router {
	return NewRouter(map[Family]Generator{
		FamilyGPT:    gen,
		FamilyClaude: gen,
	}, agent, "gpt-4o-mini", testLogger())
}

func TestRouterIdlePath(t *testing.T) {
	gen := &fakeGenerator{response: "The weather is sunny."}
	router := newTestRouter(gen, &fakeAgent{})

	answer, snapshot := router.Route(context.Background(), FamilyGPT, "What's the weather?")

	if answer != "The weather is sunny." {
		t.Errorf("answer = %q", answer)
	}
	if snapshot.IsInAgentMode {
		t.Error("informational prompt must not enter agent mode")
	}
	if snapshot.OriginalBackend != "gpt" {
		t.Errorf("original backend = %q, want gpt", snapshot.OriginalBackend)
	}
	if snapshot.ActiveBackend != "gpt" {
		t.Errorf("active backend = %q, want gpt", snapshot.ActiveBackend)
	}
	if snapshot.AgentTurnCount != 0 {
		t.Errorf("agent turn count = %d, want 0", snapshot.AgentTurnCount)
	}
	if snapshot.LastUserMessage != "What's the weather?" {
		t.Errorf("last user message = %q", snapshot.LastUserMessage)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestRouterIdleIsBackendDeterministic(t *testing.T) {
	gen := &fakeGenerator{response: "answer"}
	router := newTestRouter(gen, &fakeAgent{})

	_, first := router.Route(context.Background(), FamilyClaude, "Explain generics in Go")
	_, second := router.Route(context.Background(), FamilyClaude, "Explain generics in Go")

	if first.ActiveBackend != second.ActiveBackend {
		t.Errorf("same prompt routed to different backends: %q vs %q", first.ActiveBackend, second.ActiveBackend)
	}
}

func TestRouterEntersAgentMode(t *testing.T) {
	gen := &fakeGenerator{response: "unused"}
	ag := &fakeAgent{
		responses: []string{"What should I call the meeting?"},
		doneAfter: []bool{false},
	}
	router := newTestRouter(gen, ag)

	answer, snapshot := router.Route(context.Background(), FamilyGPT, "I need to schedule an appointment for tomorrow at 3 PM")

	if !snapshot.IsInAgentMode {
		t.Fatal("scheduling prompt must enter agent mode")
	}
	if snapshot.AgentTurnCount != 1 {
		t.Errorf("agent turn count = %d, want 1", snapshot.AgentTurnCount)
	}
	if snapshot.ActiveBackend != "gpt-4o-mini" {
		t.Errorf("active backend = %q, want the tool-calling model", snapshot.ActiveBackend)
	}
	if answer != "What should I call the meeting?" {
		t.Errorf("answer = %q", answer)
	}
	if ag.activated != 1 || ag.intent != IntentScheduling {
		t.Errorf("agent activated %d times with intent %v", ag.activated, ag.intent)
	}
	if gen.calls != 0 {
		t.Error("direct backend must not run during an agent turn")
	}
}

func TestRouterAgentOwnsActiveTurns(t *testing.T) {
	gen := &fakeGenerator{response: "unused"}
	ag := &fakeAgent{
		responses: []string{"What topic?", "Appointment scheduled successfully! Event ID: abc123"},
		doneAfter: []bool{false, true},
	}
	router := newTestRouter(gen, ag)

	router.Route(context.Background(), FamilyGPT, "schedule a meeting tomorrow at 2pm")

	// A plain follow-up stays with the agent while active.
	_, snapshot := router.Route(context.Background(), FamilyGPT, "The topic is quarterly planning")
	if snapshot.IsInAgentMode {
		t.Error("success text should return the router to idle")
	}
	if ag.activated != 1 {
		t.Errorf("agent re-activated mid-dialogue: %d activations", ag.activated)
	}

	// Back to the direct path after exit.
	answer, snapshot := router.Route(context.Background(), FamilyGPT, "Now tell me a joke")
	if snapshot.IsInAgentMode {
		t.Error("router should stay idle after agent exit")
	}
	if answer != "unused" {
		t.Errorf("direct path answer = %q", answer)
	}
}

func TestRouterUnknownFamilyFallsBack(t *testing.T) {
	gen := &fakeGenerator{response: "fallback answer"}
	router := newTestRouter(gen, &fakeAgent{})

	answer, snapshot := router.Route(context.Background(), Family("deepseek"), "Explain quicksort")

	if answer != "fallback answer" {
		t.Errorf("answer = %q", answer)
	}
	if snapshot.ActiveBackend != string(DefaultFamily) {
		t.Errorf("active backend = %q, want default", snapshot.ActiveBackend)
	}
}

func TestRouterReset(t *testing.T) {
	gen := &fakeGenerator{response: "unused"}
	ag := &fakeAgent{
		responses: []string{"What topic?"},
		doneAfter: []bool{false},
	}
	router := newTestRouter(gen, ag)

	router.Route(context.Background(), FamilyGPT, "book an appointment")
	router.Reset()

	snapshot := router.State()
	if snapshot.IsInAgentMode || snapshot.OriginalBackend != "" || snapshot.LastUserMessage != "" || snapshot.AgentTurnCount != 0 {
		t.Errorf("state after reset = %+v", snapshot)
	}
	if ag.resets != 1 {
		t.Errorf("reset must cascade to the agent, got %d resets", ag.resets)
	}
}

func TestRouterLatchesOriginalBackend(t *testing.T) {
	gen := &fakeGenerator{response: "answer"}
	router := newTestRouter(gen, &fakeAgent{})

	_, first := router.Route(context.Background(), FamilyClaude, "Explain channels")
	_, second := router.Route(context.Background(), FamilyGPT, "Explain goroutines")

	if first.OriginalBackend != "claude" || second.OriginalBackend != "claude" {
		t.Errorf("original backend should latch on first call: %q then %q",
			first.OriginalBackend, second.OriginalBackend)
	}
}
