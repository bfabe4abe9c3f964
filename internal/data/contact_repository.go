package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ContactRepository stores contact-form submissions.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// CreateContact inserts a submission and sets its ID and creation time.
func (r *ContactRepository) CreateContact(ctx context.Context, contact *Contact) error {
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO contacts (name, email, message, created_at) VALUES (?, ?, ?, ?)`
	id, err := insertReturningID(ctx, r.db, query, contact.Name, contact.Email, contact.Message, contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	contact.ID = id
	return nil
}

// MarkNotified records that the operator email for a submission went out.
func (r *ContactRepository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE contacts SET notified_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), at, id); err != nil {
		return fmt.Errorf("failed to mark contact %d notified: %w", id, err)
	}
	return nil
}

// GetUnnotified returns up to limit submissions whose email has not been
// delivered yet, oldest first.
func (r *ContactRepository) GetUnnotified(ctx context.Context, limit int) ([]*Contact, error) {
	var contacts []*Contact
	query := `SELECT id, name, email, message, created_at, notified_at FROM contacts
		WHERE notified_at IS NULL ORDER BY id LIMIT ?`
	if err := r.db.SelectContext(ctx, &contacts, r.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to get unnotified contacts: %w", err)
	}
	return contacts, nil
}
