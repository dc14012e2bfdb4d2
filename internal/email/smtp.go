// Package email provides SMTP email provider.
package email

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPProvider implements the Provider interface over plain SMTP.
type SMTPProvider struct {
	from   string
	client *mail.Client
}

// NewSMTPProvider creates an authenticated SMTP client with mandatory TLS.
func NewSMTPProvider(config Config) (*SMTPProvider, error) {
	if config.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}

	port := config.SMTPPort
	if port == 0 {
		port = 587
	}

	client, err := mail.NewClient(config.SMTPHost,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(config.SMTPUsername),
		mail.WithPassword(config.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPProvider{from: config.From, client: client}, nil
}

// SendEmail delivers an email over SMTP.
func (s *SMTPProvider) SendEmail(ctx context.Context, email *Email) error {
	if email == nil {
		return fmt.Errorf("email is required")
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(email.Subject)

	switch {
	case email.HTML != "" && email.Text != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	case email.Text != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	default:
		return fmt.Errorf("email body is empty")
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}
