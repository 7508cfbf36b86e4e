package bootstrap

import (
	"context"
	"fmt"
)

// unconfiguredScheduler stands in when calendar credentials are absent.
// Its error surfaces to the user as the agent's failure text, which
// keeps the conversational contract intact without aborting startup.
type unconfiguredScheduler struct{}

func (unconfiguredScheduler) Execute(ctx context.Context, summary, description, startTime, endTime, timezone string) (string, error) {
	return "", fmt.Errorf("google calendar is not configured")
}
