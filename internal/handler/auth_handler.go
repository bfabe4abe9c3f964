package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"go-elearn-app/internal/auth"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/session"
	"io"
	"net/http"
)

// IdentityProvider is the single sign-on provider the handlers talk to.
type IdentityProvider interface {
	LoginURL(state string) string
	Identify(ctx context.Context, code string) (*auth.Identity, error)
}

// ExternalAccounts maps a verified provider identity to a local account.
type ExternalAccounts interface {
	FindOrCreateExternal(ctx context.Context, email, preferredUsername string) (*data.User, error)
}

// AuthHandler holds the dependencies for the single sign-on handlers.
type AuthHandler struct {
	base
	provider IdentityProvider
	accounts ExternalAccounts
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(provider IdentityProvider, accounts ExternalAccounts, view middleware.Renderer, sm session.Manager, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		base:     base{view: view, sessions: sm, log: log},
		provider: provider,
		accounts: accounts,
	}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string, kept in the session, for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	state, err := randString(16)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start login", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), session.StateKey, state)
	http.Redirect(w, r, h.provider.LoginURL(state), http.StatusFound)
	return nil
}

// handleCallback is the redirect URL for the OIDC provider. It verifies the
// state, exchanges the code and signs in the account owning the verified email.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	want := h.sessions.PopString(r.Context(), session.StateKey)
	if want == "" || r.URL.Query().Get("state") != want {
		return &middleware.AppError{Error: errors.New("state did not match"), Message: "Invalid login attempt", Code: http.StatusBadRequest}
	}

	identity, err := h.provider.Identify(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Single sign-on failed", Code: http.StatusUnauthorized}
	}

	user, err := h.accounts.FindOrCreateExternal(r.Context(), identity.Email, identity.Username)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load account", Code: http.StatusInternalServerError}
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), session.UserIDKey, user.ID)
	h.log.With(map[string]interface{}{"user_id": user.ID, "subject": identity.Subject}).Info("Single sign-on login")

	next := h.sessions.PopString(r.Context(), session.NextURLKey)
	if !localPath(next) {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
	return nil
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
