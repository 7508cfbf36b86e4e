package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	Execute(ctx context.Context, to, subject, body string) (string, error)
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

// NewEmailService builds the messaging executor over an SMTP relay.
func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// Execute delivers one email and returns a human-readable result. The
// success text carries the markers the agent's exit check looks for;
// failures come back as errors and are phrased by the agent so they
// never collide with those markers.
func (s *emailService) Execute(ctx context.Context, to, subject, body string) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send email to %s: %v\n", to, err)
		return "", err
	}

	fmt.Printf("[MAILER] Email sent to %s\n", to)
	return fmt.Sprintf("Email sent successfully to %s", to), nil
}
