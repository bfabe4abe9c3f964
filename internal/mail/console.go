package mail

import (
	"context"
	"net/mail"
	"sync"

	"go-elearn-app/internal/logger"
)

// ConsoleMailer logs messages instead of delivering them. It keeps a copy
// of everything sent for inspection.
type ConsoleMailer struct {
	from mail.Address
	log  logger.Logger

	mu   sync.Mutex
	sent []Message
}

var _ Mailer = (*ConsoleMailer)(nil)

// NewConsoleMailer creates a ConsoleMailer.
func NewConsoleMailer(from mail.Address, log logger.Logger) *ConsoleMailer {
	return &ConsoleMailer{from: from, log: log}
}

// Send logs the message.
func (m *ConsoleMailer) Send(ctx context.Context, msg *Message) error {
	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = a.String()
	}
	m.log.With(map[string]interface{}{
		"from":    m.from.String(),
		"to":      to,
		"subject": msg.Subject,
	}).Info(msg.Body)

	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()
	return nil
}

// Sent returns the messages sent so far.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
