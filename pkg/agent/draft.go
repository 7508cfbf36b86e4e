package agent

import (
	"fmt"
	"strings"
)

// DefaultTimezone fills the optional timezone argument when the model
// omits it.
const DefaultTimezone = "America/New_York"

// Draft accumulates the fields of a pending side effect across agent
// turns. All fields are optional until the model supplies a complete
// argument set; the draft is cleared immediately after a successful
// execution or an explicit reset.
type Draft struct {
	Summary     string
	Description string
	StartTime   string
	EndTime     string
	Timezone    string

	To      string
	Subject string
	Body    string
}

func (d *Draft) Clear() {
	*d = Draft{}
}

func (d *Draft) Empty() bool {
	return *d == Draft{}
}

// FormatAppointment renders the scheduling fields into the text block
// ingested into the similarity index after a successful execution.
// ParseAppointmentDraft recovers summary, time window, and timezone
// losslessly from this format.
func (d *Draft) FormatAppointment() string {
	var sb strings.Builder
	sb.WriteString("Scheduled appointment: " + d.Summary + "\n")
	sb.WriteString("Description: " + d.Description + "\n")
	sb.WriteString("Start: " + d.StartTime + "\n")
	sb.WriteString("End: " + d.EndTime + "\n")
	sb.WriteString("Timezone: " + d.Timezone)
	return sb.String()
}

// FormatEmail renders the messaging fields into the ingested text block.
func (d *Draft) FormatEmail() string {
	var sb strings.Builder
	sb.WriteString("Sent email to: " + d.To + "\n")
	sb.WriteString("Subject: " + d.Subject + "\n")
	sb.WriteString("Body: " + d.Body)
	return sb.String()
}

var appointmentFields = map[string]func(*Draft, string){
	"Scheduled appointment": func(d *Draft, v string) { d.Summary = v },
	"Description":           func(d *Draft, v string) { d.Description = v },
	"Start":                 func(d *Draft, v string) { d.StartTime = v },
	"End":                   func(d *Draft, v string) { d.EndTime = v },
	"Timezone":              func(d *Draft, v string) { d.Timezone = v },
}

// ParseAppointmentDraft parses a formatted appointment block back into
// a Draft for display.
func ParseAppointmentDraft(text string) (Draft, error) {
	var d Draft
	matched := false
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		if set, known := appointmentFields[key]; known {
			set(&d, value)
			matched = true
		}
	}
	if !matched {
		return Draft{}, fmt.Errorf("not an appointment block: %q", text)
	}
	return d, nil
}
