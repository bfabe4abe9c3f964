package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, is_admin, created_at`

// UserRepository handles database operations for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a user. A taken username or email yields ErrDuplicate
// and nothing is written.
func (r *UserRepository) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (username, email, password_hash, is_admin) VALUES (?, ?, ?, ?)`
	id, err := insertReturningID(ctx, r.db, query, user.Username, user.Email, user.PasswordHash, user.IsAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// UpdateUser saves the mutable fields of an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user *User) error {
	query := `UPDATE users SET email = ?, password_hash = ?, is_admin = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), user.Email, user.PasswordHash, user.IsAdmin, user.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return r.getBy(ctx, "id", id)
}

// GetUserByUsername retrieves a user by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, "username", username)
}

// GetUserByEmail retrieves a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column string, value interface{}) (*User, error) {
	var user User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(query), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with %s %v: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return &user, nil
}

// CountUsers returns the number of registered users.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
