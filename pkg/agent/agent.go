package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"contextllm-be/pkg/events"
	"contextllm-be/pkg/llm"
	"contextllm-be/pkg/routing"
)

// MaxTurns is the safety-valve ceiling on a single agent sub-dialogue.
// A conversation whose turn counter exceeds it is force-exited even
// without explicit success or failure text.
const MaxTurns = 5

// Fallback clarification texts returned when the tool call fails or the
// model produces no content. They intentionally match the clarification
// markers so the conversation stays in agent mode for a natural retry.
const (
	ClarifySchedulingText = "I need more information to schedule your appointment."
	ClarifyMessagingText  = "I need more information to send your email."
)

var clarificationMarkers = []string{
	"need more information",
	"could you provide",
	"could you clarify",
	"please provide",
	"what time",
}

// ContainsClarificationMarker reports whether turn text indicates the
// agent is still gathering required fields.
func ContainsClarificationMarker(text string) bool {
	textLower := strings.ToLower(text)
	for _, marker := range clarificationMarkers {
		if strings.Contains(textLower, marker) {
			return true
		}
	}
	return false
}

// ContainsSuccessMarker reports whether turn text announces a completed
// side effect. Matching is literal substring checks, kept compatible
// with the executor result strings; failure strings must never hit it.
func ContainsSuccessMarker(text string) bool {
	textLower := strings.ToLower(text)
	if strings.Contains(textLower, "successfully") && strings.Contains(textLower, "scheduled") {
		return true
	}
	if strings.Contains(textLower, "successfully") && strings.Contains(textLower, "sent") && strings.Contains(textLower, "email") {
		return true
	}
	return false
}

// SchedulingExecutor creates the calendar event and returns a
// human-readable result, or an error on failure.
type SchedulingExecutor interface {
	Execute(ctx context.Context, summary, description, startTime, endTime, timezone string) (string, error)
}

// MessagingExecutor delivers the email and returns a human-readable
// result, or an error on failure.
type MessagingExecutor interface {
	Execute(ctx context.Context, to, subject, body string) (string, error)
}

// Ingestor receives the formatted draft of a completed side effect for
// long-term recall.
type Ingestor interface {
	Ingest(document string)
}

// EventPublisher broadcasts completed side effects to the event bus.
// Optional; a nil publisher disables broadcasting.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Agent runs the short multi-turn sub-dialogue that collects the fields
// of a scheduling or messaging side effect and executes it.
//
// Not safe for concurrent use; each caller owns its own instance.
type Agent struct {
	callerId  string
	provider  llm.ToolProvider
	scheduler SchedulingExecutor
	mailer    MessagingExecutor
	ingestor  Ingestor
	publisher EventPublisher
	logger    *log.Logger

	intent    routing.Intent
	history   []llm.Message
	draft     Draft
	turnCount int
}

func New(callerId string, provider llm.ToolProvider, scheduler SchedulingExecutor, mailer MessagingExecutor, ingestor Ingestor, publisher EventPublisher, logger *log.Logger) *Agent {
	return &Agent{
		callerId:  callerId,
		provider:  provider,
		scheduler: scheduler,
		mailer:    mailer,
		ingestor:  ingestor,
		publisher: publisher,
		logger:    logger,
	}
}

// Activate marks the start of a new sub-dialogue for the detected
// intent and zeroes the turn counter.
func (a *Agent) Activate(intent routing.Intent) {
	a.intent = intent
	a.turnCount = 0
}

// TurnCount returns the number of turns taken in the current
// sub-dialogue.
func (a *Agent) TurnCount() int {
	return a.turnCount
}

// Reset clears the conversation history, the draft, and the counter.
func (a *Agent) Reset() {
	a.history = nil
	a.draft.Clear()
	a.turnCount = 0
}

func (a *Agent) systemPrompt() string {
	return fmt.Sprintf(`Today's date is %s.
You are a scheduling and email assistant. Your goal is to schedule appointments and send emails for users.
You may ask for clarification if the user hasn't provided enough information.

Required information for scheduling:
- Start time and end time in ISO format (YYYY-MM-DDTHH:MM:SS)
- Summary/title of the appointment
- Description

Required information for email:
- Recipient address, subject, and body

Use the schedule_appointment or send_email function when you have all required information.

IMPORTANT: Remember the conversation context and use information from previous messages
to fill out details. If the user provides information in multiple messages,
combine them to create a complete request.`, time.Now().Format("1/2/2006"))
}

func toolSchemas() []llm.ToolSchema {
	return []llm.ToolSchema{
		{
			Name:        "schedule_appointment",
			Description: "Schedule an appointment on the user's calendar",
			Parameters: map[string]llm.ToolParameter{
				"summary":     {Type: "string", Description: "Title of the appointment"},
				"description": {Type: "string", Description: "Description of the appointment"},
				"start_time":  {Type: "string", Description: "Start time in ISO format (YYYY-MM-DDTHH:MM:SS)"},
				"end_time":    {Type: "string", Description: "End time in ISO format (YYYY-MM-DDTHH:MM:SS)"},
				"timezone":    {Type: "string", Description: "Timezone (default: America/New_York)"},
			},
			Required: []string{"summary", "description", "start_time", "end_time"},
		},
		{
			Name:        "send_email",
			Description: "Send an email on the user's behalf",
			Parameters: map[string]llm.ToolParameter{
				"to":      {Type: "string", Description: "Recipient email address"},
				"subject": {Type: "string", Description: "Email subject line"},
				"body":    {Type: "string", Description: "Email body content"},
			},
			Required: []string{"to", "subject", "body"},
		},
	}
}

// enhancedPrompt renders the last turns of history plus the accumulated
// draft ahead of the current user message.
func (a *Agent) enhancedPrompt(prompt string) string {
	var sb strings.Builder

	if len(a.history) > 0 {
		sb.WriteString("Previous conversation:\n")
		start := len(a.history) - 5
		if start < 0 {
			start = 0
		}
		for i, msg := range a.history[start:] {
			sb.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, strings.Title(msg.Role), msg.Content))
		}
	}

	if !a.draft.Empty() {
		sb.WriteString("\nCurrent request details:\n")
		for _, field := range [][2]string{
			{"summary", a.draft.Summary},
			{"description", a.draft.Description},
			{"start_time", a.draft.StartTime},
			{"end_time", a.draft.EndTime},
			{"timezone", a.draft.Timezone},
			{"to", a.draft.To},
			{"subject", a.draft.Subject},
			{"body", a.draft.Body},
		} {
			if field[1] != "" {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", field[0], field[1]))
			}
		}
	}

	sb.WriteString("\nCurrent user message: " + prompt)
	return sb.String()
}

func (a *Agent) clarifyText() string {
	if a.intent == routing.IntentMessaging {
		return ClarifyMessagingText
	}
	return ClarifySchedulingText
}

// Turn processes one ACTIVE turn. It returns the agent's text plus
// whether the sub-dialogue is finished and control should return to the
// direct backend path.
//
// Exit ordering: clarification markers are checked before the success
// and ceiling checks, so an agent legitimately still gathering fields is
// never force-exited by turn count alone unless the ceiling is also
// exceeded.
func (a *Agent) Turn(ctx context.Context, prompt string) (string, bool) {
	a.turnCount++
	a.history = append(a.history, llm.Message{Role: "user", Content: prompt})

	response := a.callModel(ctx, prompt)
	a.history = append(a.history, llm.Message{Role: "assistant", Content: response})

	if ContainsClarificationMarker(response) && a.turnCount <= MaxTurns {
		return response, false
	}
	if ContainsSuccessMarker(response) {
		a.finalize(ctx)
		return response, true
	}
	if a.turnCount > MaxTurns {
		// Safety valve: force the exit but keep the draft, it is only
		// cleared on success or an explicit reset.
		a.logger.Printf("[WARN] Agent turn ceiling exceeded for caller %s, exiting agent mode", a.callerId)
		return response, true
	}
	return response, false
}

func (a *Agent) callModel(ctx context.Context, prompt string) string {
	history := []llm.Message{
		{Role: "user", Content: a.enhancedPrompt(prompt)},
	}

	result, err := a.provider.ChatWithTools(ctx, history, toolSchemas(), llm.WithSystem(a.systemPrompt()))
	if err != nil {
		a.logger.Printf("[ERROR] Agent tool call failed for caller %s: %v", a.callerId, err)
		return a.clarifyText()
	}

	if result.HasToolCalls() {
		var results []string
		for _, call := range result.ToolCalls {
			switch call.Name {
			case "schedule_appointment":
				results = append(results, a.scheduleAppointment(ctx, call.Arguments))
			case "send_email":
				results = append(results, a.sendEmail(ctx, call.Arguments))
			default:
				a.logger.Printf("[WARN] Agent selected unknown tool %q", call.Name)
			}
		}
		if len(results) > 0 {
			return strings.Join(results, "\n")
		}
	}

	if result.Text == "" {
		return a.clarifyText()
	}
	return result.Text
}

func (a *Agent) scheduleAppointment(ctx context.Context, args map[string]string) string {
	for _, required := range []string{"summary", "description", "start_time", "end_time"} {
		if args[required] == "" {
			return a.clarifyText()
		}
	}

	timezone := args["timezone"]
	if timezone == "" {
		timezone = DefaultTimezone
	}

	a.draft.Summary = args["summary"]
	a.draft.Description = args["description"]
	a.draft.StartTime = args["start_time"]
	a.draft.EndTime = args["end_time"]
	a.draft.Timezone = timezone

	result, err := a.scheduler.Execute(ctx, args["summary"], args["description"], args["start_time"], args["end_time"], timezone)
	if err != nil {
		return fmt.Sprintf("Failed to schedule appointment: %v", err)
	}
	return result
}

func (a *Agent) sendEmail(ctx context.Context, args map[string]string) string {
	for _, required := range []string{"to", "subject", "body"} {
		if args[required] == "" {
			return a.clarifyText()
		}
	}

	a.draft.To = args["to"]
	a.draft.Subject = args["subject"]
	a.draft.Body = args["body"]

	result, err := a.mailer.Execute(ctx, args["to"], args["subject"], args["body"])
	if err != nil {
		return fmt.Sprintf("Failed to send email: %v", err)
	}
	return result
}

// finalize runs after a success marker: the accumulated draft is
// formatted and ingested so future retrieval can recall what was done,
// the completion event is published, then everything is cleared.
func (a *Agent) finalize(ctx context.Context) {
	if a.draft.Summary != "" {
		a.ingestor.Ingest(a.draft.FormatAppointment())
		if a.publisher != nil {
			evt := events.NewAppointmentScheduledEvent(a.callerId, a.draft.Summary, a.draft.StartTime, a.draft.EndTime, a.draft.Timezone)
			if err := a.publisher.Publish(ctx, evt); err != nil {
				a.logger.Printf("[WARN] Failed to publish %s event: %v", evt.EventType(), err)
			}
		}
	}
	if a.draft.To != "" {
		a.ingestor.Ingest(a.draft.FormatEmail())
		if a.publisher != nil {
			evt := events.NewEmailSentEvent(a.callerId, a.draft.To, a.draft.Subject)
			if err := a.publisher.Publish(ctx, evt); err != nil {
				a.logger.Printf("[WARN] Failed to publish %s event: %v", evt.EventType(), err)
			}
		}
	}
	a.Reset()
}
