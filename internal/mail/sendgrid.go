package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendgridEndpoint = "/v3/mail/send"

// SendGridMailer delivers messages through the SendGrid v3 API.
type SendGridMailer struct {
	key  string
	host string
	from *sgmail.Email
}

var _ Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer creates a SendGridMailer.
func NewSendGridMailer(key string, from mail.Address) *SendGridMailer {
	return &SendGridMailer{
		key:  key,
		host: "https://api.sendgrid.com",
		from: sgmail.NewEmail(from.Name, from.Address),
	}
}

func (m *SendGridMailer) prepare(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	if msg.ReplyTo != nil {
		v3.SetReplyTo(sgmail.NewEmail(msg.ReplyTo.Name, msg.ReplyTo.Address))
	}
	v3.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return v3
}

// Send posts the message and treats any 4xx or 5xx answer as a failure.
func (m *SendGridMailer) Send(ctx context.Context, msg *Message) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
