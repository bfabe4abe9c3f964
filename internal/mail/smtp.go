package mail

import (
	"context"
	"fmt"
	"go-elearn-app/internal/config"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPMailer relays messages through an SMTP server.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from mail.Address
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates an SMTPMailer. Authentication is skipped when no
// username is configured.
func NewSMTPMailer(cfg config.SMTPConfig, from mail.Address) *SMTPMailer {
	m := &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: from,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m
}

// Send delivers the message. net/smtp has no context support, so ctx is
// only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = a.Address
	}
	if err := smtp.SendMail(m.addr, m.auth, m.from.Address, to, m.compose(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", strings.Join(to, ","), err)
	}
	return nil
}

func (m *SMTPMailer) compose(msg *Message) []byte {
	var b strings.Builder
	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = a.String()
	}
	fmt.Fprintf(&b, "From: %s\r\n", m.from.String())
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	if msg.ReplyTo != nil {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo.String())
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerText(msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerText folds a free-text header value onto one line and encodes any
// non-ASCII text as an RFC 2047 word.
func headerText(v string) string {
	return mime.QEncoding.Encode("utf-8", strings.TrimSpace(lineBreaks.Replace(v)))
}
