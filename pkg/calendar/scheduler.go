package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const eventsURL = "https://www.googleapis.com/calendar/v3/calendars/%s/events?sendUpdates=all"

// Google's OAuth endpoint, spelled out so the token exchange does not
// pull in the whole google SDK surface.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventRequest struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventResponse struct {
	Id string `json:"id"`
}

// Scheduler creates events via the Google Calendar v3 REST API using a
// refresh-token-backed oauth2 client.
type Scheduler struct {
	client     *http.Client
	calendarId string
}

// NewScheduler fails fast on missing credentials; that is a
// configuration error and must abort construction.
func NewScheduler(clientId, clientSecret, refreshToken string) (*Scheduler, error) {
	if clientId == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("google calendar credentials are required: set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REFRESH_TOKEN")
	}

	conf := &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		Endpoint:     googleEndpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
	}
	client := conf.Client(context.Background(), &oauth2.Token{RefreshToken: refreshToken})

	return &Scheduler{
		client:     client,
		calendarId: "primary",
	}, nil
}

// Execute inserts one calendar event and returns a human-readable
// result. The success text carries the markers the agent's exit check
// looks for.
func (s *Scheduler) Execute(ctx context.Context, summary, description, startTime, endTime, timezone string) (string, error) {
	payload := eventRequest{
		Summary:     summary,
		Description: description,
		Start:       eventTime{DateTime: startTime, TimeZone: timezone},
		End:         eventTime{DateTime: endTime, TimeZone: timezone},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	url := fmt.Sprintf(eventsURL, s.calendarId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("calendar API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var event eventResponse
	if err := json.Unmarshal(respBody, &event); err != nil {
		return "", fmt.Errorf("failed to parse event response: %w", err)
	}

	return fmt.Sprintf("Appointment scheduled successfully! Event ID: %s", event.Id), nil
}
