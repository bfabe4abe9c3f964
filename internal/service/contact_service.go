package service

import (
	"context"
	"errors"
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/mail"
	netmail "net/mail"
	"strings"
	"time"
)

// ErrNotDelivered is returned alongside a stored submission whose operator
// email could not be sent.
var ErrNotDelivered = errors.New("notification email not delivered")

// retryBatch caps how many pending notifications one retry run sends.
const retryBatch = 50

// Column sizes of the contacts table.
const (
	maxContactName  = 100
	maxContactEmail = 254
)

// ContactRepository defines the interface for storing contact submissions.
type ContactRepository interface {
	CreateContact(ctx context.Context, contact *data.Contact) error
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	GetUnnotified(ctx context.Context, limit int) ([]*data.Contact, error)
}

// ContactService stores contact-form submissions and notifies the operator.
type ContactService struct {
	contacts  ContactRepository
	mailer    mail.Mailer
	operator  netmail.Address
	validator *Validator
	log       logger.Logger
	now       func() time.Time
}

// NewContactService creates a new ContactService sending to operator.
func NewContactService(contacts ContactRepository, mailer mail.Mailer, operator string, v *Validator, log logger.Logger) (*ContactService, error) {
	addr, err := netmail.ParseAddress(operator)
	if err != nil {
		return nil, fmt.Errorf("invalid operator address %q: %w", operator, err)
	}
	return &ContactService{
		contacts:  contacts,
		mailer:    mailer,
		operator:  *addr,
		validator: v,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Submit stores a submission as received, then emails the operator. The
// submission is kept when the email fails; the returned error then wraps
// ErrNotDelivered and the contact is still returned.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*data.Contact, error) {
	contact := &data.Contact{
		Name:    truncate(strings.TrimSpace(in.Name), maxContactName),
		Email:   truncate(strings.TrimSpace(in.Email), maxContactEmail),
		Message: in.Message,
	}
	if err := s.contacts.CreateContact(ctx, contact); err != nil {
		return nil, err
	}

	if err := s.notify(ctx, contact); err != nil {
		s.log.With(map[string]interface{}{"contact_id": contact.ID}).Warn(fmt.Sprintf("Contact notification failed: %v", err))
		return contact, fmt.Errorf("%w: %v", ErrNotDelivered, err)
	}
	return contact, nil
}

// RetryPending re-sends notifications of submissions that were never
// delivered and returns how many went out.
func (s *ContactService) RetryPending(ctx context.Context) (int, error) {
	pending, err := s.contacts.GetUnnotified(ctx, retryBatch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, contact := range pending {
		if err := s.notify(ctx, contact); err != nil {
			s.log.With(map[string]interface{}{"contact_id": contact.ID}).Warn(fmt.Sprintf("Contact notification retry failed: %v", err))
			continue
		}
		sent++
	}
	return sent, nil
}

// notify sends the operator email. A failure to record the delivery is
// logged only, since the email already went out.
func (s *ContactService) notify(ctx context.Context, contact *data.Contact) error {
	msg := &mail.Message{
		To:      []netmail.Address{s.operator},
		Subject: "New Contact Form Submission from " + strings.Join(strings.Fields(contact.Name), " "),
		Body:    fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s", contact.Name, contact.Email, contact.Message),
	}
	if s.validator.Var(contact.Email, "required,email") == nil {
		msg.ReplyTo = &netmail.Address{Name: contact.Name, Address: contact.Email}
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}
	at := s.now()
	if err := s.contacts.MarkNotified(ctx, contact.ID, at); err != nil {
		s.log.With(map[string]interface{}{"contact_id": contact.ID}).Error(err, "Failed to record contact notification")
		return nil
	}
	contact.NotifiedAt = &at
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
