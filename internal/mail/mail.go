// Package mail delivers operator notifications.
package mail

import (
	"context"
	"fmt"
	"go-elearn-app/internal/config"
	"go-elearn-app/internal/logger"
	"net/mail"
)

// Message is a plain-text email.
type Message struct {
	To      []mail.Address
	ReplyTo *mail.Address
	Subject string
	Body    string
}

// Mailer sends a message synchronously and reports delivery failures.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New returns the mailer selected by cfg.Backend.
func New(cfg config.MailConfig, log logger.Logger) (Mailer, error) {
	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid mail.from %q: %w", cfg.From, err)
	}
	switch cfg.Backend {
	case "", "console":
		return NewConsoleMailer(*from, log), nil
	case "smtp":
		return NewSMTPMailer(cfg.SMTP, *from), nil
	case "sendgrid":
		if cfg.SendGrid.APIKey == "" {
			return nil, fmt.Errorf("mail.sendgrid.apiKey is required for the sendgrid backend")
		}
		return NewSendGridMailer(cfg.SendGrid.APIKey, *from), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}
