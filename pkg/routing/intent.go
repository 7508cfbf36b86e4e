package routing

import (
	"regexp"
	"strings"
)

// Intent classifies a prompt as an informational query or a side-effect
// request. Detection is deliberately literal: keyword membership plus a
// few time-expression patterns. Precision is traded for recall since a
// mis-route is recoverable through the agent's exit logic.
type Intent int

const (
	IntentNone Intent = iota
	IntentScheduling
	IntentMessaging
)

func (i Intent) String() string {
	switch i {
	case IntentScheduling:
		return "scheduling"
	case IntentMessaging:
		return "messaging"
	default:
		return "none"
	}
}

var schedulingKeywords = []string{
	"appointment", "schedule", "booking", "meeting", "calendar",
	"reserve", "book", "arrange", "set up", "organize",
	"tomorrow", "next week", "this week", "today at",
	"morning", "afternoon", "evening",
}

var messagingKeywords = []string{
	"email", "send email", "mail",
}

// Time expressions that signal a scheduling request on their own:
// clock times, day-of-week references, relative days.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm)\b`),
	regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`\b(tomorrow|tonight)\b`),
	regexp.MustCompile(`\bnext\s+(week|month|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`\bat\s+\d{1,2}\b`),
}

// DetectIntent is a pure function over the raw prompt. Scheduling wins
// over messaging on mixed phrasing with explicit scheduling verbs.
func DetectIntent(prompt string) Intent {
	promptLower := strings.ToLower(prompt)

	scheduling := false
	for _, keyword := range schedulingKeywords {
		if strings.Contains(promptLower, keyword) {
			scheduling = true
			break
		}
	}
	if !scheduling {
		for _, pattern := range timePatterns {
			if pattern.MatchString(promptLower) {
				scheduling = true
				break
			}
		}
	}
	if scheduling {
		return IntentScheduling
	}

	for _, keyword := range messagingKeywords {
		if strings.Contains(promptLower, keyword) {
			return IntentMessaging
		}
	}

	return IntentNone
}
