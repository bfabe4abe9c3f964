package service

import (
	"context"
	"errors"
	"fmt"
	"go-elearn-app/internal/data"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a username and password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// unusablePassword marks accounts that can only sign in through SSO.
const unusablePassword = "!"

// UserRepository defines the interface for database operations on users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *data.User) error
	UpdateUser(ctx context.Context, user *data.User) error
	GetUserByID(ctx context.Context, id int64) (*data.User, error)
	GetUserByUsername(ctx context.Context, username string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
}

// AccountService manages user accounts and password authentication.
type AccountService struct {
	users     UserRepository
	validator *Validator
	cost      int
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserRepository, v *Validator) *AccountService {
	return &AccountService{users: users, validator: v, cost: bcrypt.DefaultCost}
}

// Signup validates the registration form and creates a regular account.
// Taken usernames or emails are reported as field errors and nothing is written.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*data.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if taken, err := s.exists(ctx, s.users.GetUserByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ValidationErrors{"email": "email already exists"}
	}
	if taken, err := s.exists(ctx, s.users.GetUserByUsername, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ValidationErrors{"username": "username already exists"}
	}

	user, err := s.create(ctx, in.Username, in.Email, in.Password, false)
	if errors.Is(err, data.ErrDuplicate) {
		// Lost a race with a concurrent signup.
		return nil, ValidationErrors{"username": "username or email already exists"}
	}
	return user, err
}

// Login checks a username and password.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*data.User, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == unusablePassword {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves an account by id.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*data.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// FindOrCreateExternal returns the account owning a verified email from the
// identity provider, creating one without a usable password if needed.
func (s *AccountService) FindOrCreateExternal(ctx context.Context, email, preferredUsername string) (*data.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	base := strings.TrimSpace(preferredUsername)
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
	}
	username := base
	for attempt := 0; attempt < 3; attempt++ {
		user = &data.User{Username: username, Email: email, PasswordHash: unusablePassword}
		err = s.users.CreateUser(ctx, user)
		if !errors.Is(err, data.ErrDuplicate) {
			break
		}
		username = base + "-" + uuid.NewString()[:8]
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account for %s: %w", email, err)
	}
	return user, nil
}

// CreateAdmin creates an administrator, or promotes and resets the password
// of an existing account with the same username.
func (s *AccountService) CreateAdmin(ctx context.Context, username, email, password string) (*data.User, error) {
	if len(password) < 8 {
		return nil, ValidationErrors{"password": "password must be at least 8 characters"}
	}
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}
	if existing == nil {
		return s.create(ctx, username, strings.ToLower(email), password, true)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	existing.PasswordHash = string(hash)
	existing.IsAdmin = true
	if email != "" {
		existing.Email = strings.ToLower(email)
	}
	if err := s.users.UpdateUser(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *AccountService) create(ctx context.Context, username, email, password string, admin bool) (*data.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &data.User{Username: username, Email: email, PasswordHash: string(hash), IsAdmin: admin}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) exists(ctx context.Context, get func(context.Context, string) (*data.User, error), value string) (bool, error) {
	_, err := get(ctx, value)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, data.ErrNotFound) {
		return false, nil
	}
	return false, err
}
