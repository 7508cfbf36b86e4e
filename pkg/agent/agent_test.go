package agent

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"contextllm-be/pkg/events"
	"contextllm-be/pkg/llm"
	"contextllm-be/pkg/routing"
)

type scriptedProvider struct {
	results []*llm.ToolResult
	err     error
	calls   int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.ToolSchema, options ...llm.Option) (*llm.ToolResult, error) {
	idx := s.calls
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if idx >= len(s.results) {
		return &llm.ToolResult{Text: "Could you provide more details?"}, nil
	}
	return s.results[idx], nil
}

type fakeScheduler struct {
	result string
	err    error
	calls  int
	args   map[string]string
}

func (f *fakeScheduler) Execute(ctx context.Context, summary, description, startTime, endTime, timezone string) (string, error) {
	f.calls++
	f.args = map[string]string{
		"summary": summary, "description": description,
		"start_time": startTime, "end_time": endTime, "timezone": timezone,
	}
	return f.result, f.err
}

type fakeMailer struct {
	result string
	err    error
	calls  int
}

func (f *fakeMailer) Execute(ctx context.Context, to, subject, body string) (string, error) {
	f.calls++
	return f.result, f.err
}

type fakeIngestor struct {
	documents []string
}

func (f *fakeIngestor) Ingest(document string) {
	f.documents = append(f.documents, document)
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func textResult(text string) *llm.ToolResult {
	return &llm.ToolResult{Text: text}
}

func scheduleCall(args map[string]string) *llm.ToolResult {
	return &llm.ToolResult{ToolCalls: []llm.ToolCall{{Name: "schedule_appointment", Arguments: args}}}
}

func completeScheduleArgs() map[string]string {
	return map[string]string{
		"summary":     "Team sync",
		"description": "Quarterly planning",
		"start_time":  "2026-09-01T15:00:00",
		"end_time":    "2026-09-01T16:00:00",
		"timezone":    "America/New_York",
	}
}

func newTestAgent(provider llm.ToolProvider, scheduler SchedulingExecutor, mailer MessagingExecutor, ingestor Ingestor, publisher EventPublisher) *Agent {
	a := New("caller-1", provider, scheduler, mailer, ingestor, publisher, testLogger())
	a.Activate(routing.IntentScheduling)
	return a
}

func TestAgentSchedulesAndExits(t *testing.T) {
	scheduler := &fakeScheduler{result: "Appointment scheduled successfully! Event ID: evt_42"}
	ingestor := &fakeIngestor{}
	publisher := &fakePublisher{}
	provider := &scriptedProvider{results: []*llm.ToolResult{scheduleCall(completeScheduleArgs())}}

	a := newTestAgent(provider, scheduler, &fakeMailer{}, ingestor, publisher)
	response, done := a.Turn(context.Background(), "Schedule a team sync tomorrow at 3pm for an hour")

	if !done {
		t.Fatal("a successful scheduling turn must exit agent mode")
	}
	if response != "Appointment scheduled successfully! Event ID: evt_42" {
		t.Errorf("response = %q", response)
	}
	if scheduler.calls != 1 {
		t.Fatalf("scheduler calls = %d, want 1", scheduler.calls)
	}
	if scheduler.args["timezone"] != "America/New_York" {
		t.Errorf("timezone = %q", scheduler.args["timezone"])
	}

	// The completed draft is formatted and ingested for future recall.
	if len(ingestor.documents) != 1 {
		t.Fatalf("ingested documents = %d, want 1", len(ingestor.documents))
	}
	if !strings.Contains(ingestor.documents[0], "Team sync") {
		t.Errorf("ingested block missing summary: %q", ingestor.documents[0])
	}

	if len(publisher.published) != 1 || publisher.published[0].EventType() != events.TypeAppointmentScheduled {
		t.Errorf("published events = %+v", publisher.published)
	}

	// Draft and counter are cleared after success.
	if a.TurnCount() != 0 {
		t.Errorf("turn count after success = %d, want 0", a.TurnCount())
	}
	if !a.draft.Empty() {
		t.Errorf("draft not cleared: %+v", a.draft)
	}
}

func TestAgentSendsEmailAndExits(t *testing.T) {
	mailer := &fakeMailer{result: "Email sent successfully to bob@example.com"}
	ingestor := &fakeIngestor{}
	provider := &scriptedProvider{results: []*llm.ToolResult{
		{ToolCalls: []llm.ToolCall{{Name: "send_email", Arguments: map[string]string{
			"to": "bob@example.com", "subject": "Launch", "body": "We ship Friday.",
		}}}},
	}}

	a := New("caller-1", provider, &fakeScheduler{}, mailer, ingestor, nil, testLogger())
	a.Activate(routing.IntentMessaging)

	response, done := a.Turn(context.Background(), "email bob that we ship friday")

	if !done {
		t.Fatal("a successful email turn must exit agent mode")
	}
	if !ContainsSuccessMarker(response) {
		t.Errorf("success text should match exit markers: %q", response)
	}
	if mailer.calls != 1 {
		t.Errorf("mailer calls = %d, want 1", mailer.calls)
	}
	if len(ingestor.documents) != 1 || !strings.Contains(ingestor.documents[0], "bob@example.com") {
		t.Errorf("ingested documents = %v", ingestor.documents)
	}
}

func TestAgentClarificationKeepsActive(t *testing.T) {
	provider := &scriptedProvider{results: []*llm.ToolResult{
		textResult("I need more information to schedule your appointment."),
	}}
	a := newTestAgent(provider, &fakeScheduler{}, &fakeMailer{}, &fakeIngestor{}, nil)

	response, done := a.Turn(context.Background(), "schedule something")

	if done {
		t.Error("clarification text must keep the agent active")
	}
	if !ContainsClarificationMarker(response) {
		t.Errorf("response should carry a clarification marker: %q", response)
	}
	if a.TurnCount() != 1 {
		t.Errorf("turn count = %d, want 1", a.TurnCount())
	}
}

func TestAgentTurnCeiling(t *testing.T) {
	// Six consecutive turns without a success marker force an exit on
	// the sixth, even when every turn asks for clarification.
	provider := &scriptedProvider{}
	a := newTestAgent(provider, &fakeScheduler{}, &fakeMailer{}, &fakeIngestor{}, nil)

	var done bool
	for i := 0; i < 6; i++ {
		if done {
			t.Fatalf("agent exited early on turn %d", i)
		}
		_, done = a.Turn(context.Background(), "still thinking about the details")
	}
	if !done {
		t.Error("agent must exit by the sixth turn")
	}
}

func TestAgentToolFailureKeepsActive(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("upstream timeout")}
	a := newTestAgent(provider, &fakeScheduler{}, &fakeMailer{}, &fakeIngestor{}, nil)

	response, done := a.Turn(context.Background(), "schedule my dentist appointment")

	if done {
		t.Error("a failed tool call must keep the agent active for a retry")
	}
	if response != ClarifySchedulingText {
		t.Errorf("response = %q, want the clarification fallback", response)
	}
}

func TestAgentExecutionFailureText(t *testing.T) {
	scheduler := &fakeScheduler{err: errors.New("calendar API returned status 403")}
	provider := &scriptedProvider{results: []*llm.ToolResult{scheduleCall(completeScheduleArgs())}}
	a := newTestAgent(provider, scheduler, &fakeMailer{}, &fakeIngestor{}, nil)

	response, _ := a.Turn(context.Background(), "schedule the sync")

	if !strings.HasPrefix(response, "Failed to schedule appointment:") {
		t.Errorf("response = %q", response)
	}
	// Failure text must never collide with the success markers, or the
	// machine would exit on a failed side effect.
	if ContainsSuccessMarker(response) {
		t.Errorf("failure text matches success markers: %q", response)
	}
}

func TestAgentIncompleteArgumentsClarify(t *testing.T) {
	scheduler := &fakeScheduler{result: "Appointment scheduled successfully! Event ID: x"}
	args := completeScheduleArgs()
	delete(args, "end_time")
	provider := &scriptedProvider{results: []*llm.ToolResult{scheduleCall(args)}}
	a := newTestAgent(provider, scheduler, &fakeMailer{}, &fakeIngestor{}, nil)

	response, done := a.Turn(context.Background(), "schedule the sync")

	if scheduler.calls != 0 {
		t.Error("incomplete arguments must not reach the executor")
	}
	if done {
		t.Error("incomplete arguments must keep the agent active")
	}
	if response != ClarifySchedulingText {
		t.Errorf("response = %q", response)
	}
}

func TestAgentReset(t *testing.T) {
	provider := &scriptedProvider{results: []*llm.ToolResult{
		textResult("I need more information to schedule your appointment."),
	}}
	a := newTestAgent(provider, &fakeScheduler{}, &fakeMailer{}, &fakeIngestor{}, nil)

	a.Turn(context.Background(), "schedule something")
	a.draft.Summary = "leftover"
	a.Reset()

	if a.TurnCount() != 0 || !a.draft.Empty() || len(a.history) != 0 {
		t.Errorf("reset left state behind: turns=%d draft=%+v history=%d",
			a.TurnCount(), a.draft, len(a.history))
	}
}

func TestSuccessMarkerMatrix(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Appointment scheduled successfully! Event ID: abc", true},
		{"Email sent successfully to a@b.c", true},
		{"Failed to schedule appointment: boom", false},
		{"Failed to send email: boom", false},
		{"I need more information to schedule your appointment.", false},
		{"The meeting is scheduled", false},
	}
	for _, tt := range tests {
		if got := ContainsSuccessMarker(tt.text); got != tt.want {
			t.Errorf("ContainsSuccessMarker(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
