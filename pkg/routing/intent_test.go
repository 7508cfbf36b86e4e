package routing

import (
	"testing"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   Intent
	}{
		{
			name:   "plain question",
			prompt: "What is machine learning?",
			want:   IntentNone,
		},
		{
			name:   "greeting",
			prompt: "Hi! How are you doing today?",
			want:   IntentNone,
		},
		{
			name:   "schedule a meeting with time",
			prompt: "schedule a meeting tomorrow at 2pm",
			want:   IntentScheduling,
		},
		{
			name:   "appointment request",
			prompt: "I need to schedule an appointment for tomorrow at 3 PM",
			want:   IntentScheduling,
		},
		{
			name:   "book an appointment",
			prompt: "Book an appointment",
			want:   IntentScheduling,
		},
		{
			name:   "reserve a slot",
			prompt: "Reserve a slot",
			want:   IntentScheduling,
		},
		{
			name:   "arrange something",
			prompt: "I need to arrange something",
			want:   IntentScheduling,
		},
		{
			name:   "clock time only",
			prompt: "2:30 PM",
			want:   IntentScheduling,
		},
		{
			name:   "day of week only",
			prompt: "next Monday",
			want:   IntentScheduling,
		},
		{
			name:   "accepted false positive on booked",
			prompt: "I booked a flight yesterday",
			want:   IntentScheduling,
		},
		{
			name:   "send an email",
			prompt: "send an email to bob@example.com about the launch",
			want:   IntentMessaging,
		},
		{
			name:   "mail keyword",
			prompt: "mail the report to finance",
			want:   IntentMessaging,
		},
		{
			name:   "email a meeting invite is scheduling first",
			prompt: "email everyone to set up a meeting",
			want:   IntentScheduling,
		},
		{
			name:   "joke request",
			prompt: "Tell me a joke",
			want:   IntentNone,
		},
		{
			name:   "informational question with a time word",
			prompt: "What is the weather like today?",
			want:   IntentNone,
		},
		{
			name:   "empty prompt",
			prompt: "",
			want:   IntentNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectIntent(tt.prompt)
			if got != tt.want {
				t.Errorf("DetectIntent(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestIntentString(t *testing.T) {
	if IntentNone.String() != "none" {
		t.Errorf("IntentNone.String() = %q", IntentNone.String())
	}
	if IntentScheduling.String() != "scheduling" {
		t.Errorf("IntentScheduling.String() = %q", IntentScheduling.String())
	}
	if IntentMessaging.String() != "messaging" {
		t.Errorf("IntentMessaging.String() = %q", IntentMessaging.String())
	}
}
