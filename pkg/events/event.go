package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "appointment_scheduled").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by all emitters.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeAppointmentScheduled = "appointment_scheduled"
	TypeEmailSent            = "email_sent"
)

// NewAppointmentScheduledEvent is emitted after the calendar executor
// confirms an event was created.
func NewAppointmentScheduledEvent(callerId, summary, startTime, endTime, timezone string) BaseEvent {
	return BaseEvent{
		Type: TypeAppointmentScheduled,
		Data: map[string]interface{}{
			"caller_id":  callerId,
			"summary":    summary,
			"start_time": startTime,
			"end_time":   endTime,
			"timezone":   timezone,
		},
		OccurredAt: time.Now(),
	}
}

// NewEmailSentEvent is emitted after the mailer confirms delivery to
// the SMTP relay.
func NewEmailSentEvent(callerId, to, subject string) BaseEvent {
	return BaseEvent{
		Type: TypeEmailSent,
		Data: map[string]interface{}{
			"caller_id": callerId,
			"to":        to,
			"subject":   subject,
		},
		OccurredAt: time.Now(),
	}
}
