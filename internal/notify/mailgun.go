package notify

import (
	"context"
	"fmt"

	mg "github.com/mailgun/mailgun-go/v5"
)

// MailgunSender sends confirmation email through the Mailgun API.
type MailgunSender struct {
	client *mg.Client
	domain string
	from   string
}

// NewMailgunSender creates a Mailgun-backed sender. from is the local
// part of the sender address, e.g. "noreply".
func NewMailgunSender(domain, apiKey, from string) *MailgunSender {
	return &MailgunSender{
		client: mg.NewMailgun(apiKey),
		domain: domain,
		from:   fmt.Sprintf("%s@%s", from, domain),
	}
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	m := mg.NewMessage(s.domain, s.from, msg.Subject, msg.Body, msg.To)
	if _, err := s.client.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
