package mailer

import (
	"context"

	"github.com/schedwise/schedwise/internal/schedule"
)

// Sender adapts a Gmail client to the orchestrator's mail boundary.
type Sender struct {
	client *Client
}

// NewSender wraps a client.
func NewSender(client *Client) *Sender {
	return &Sender{client: client}
}

var _ schedule.Mailer = (*Sender)(nil)

// Send renders the named template with the locals and dispatches the email.
func (s *Sender) Send(ctx context.Context, tmpl string, locals map[string]string, to []string, replyTo string) error {
	subject, body, err := renderTemplate(tmpl, locals)
	if err != nil {
		return err
	}

	_, err = s.client.SendEmail(ctx, &EmailMessage{
		To:      to,
		ReplyTo: replyTo,
		Subject: subject,
		Body:    body,
	})
	return err
}
