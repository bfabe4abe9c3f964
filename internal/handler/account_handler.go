package handler

import (
	"errors"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/service"
	"go-elearn-app/internal/session"
	"net/http"
)

// AccountHandler serves signup, password login, logout and the profile page.
type AccountHandler struct {
	base
	accounts   *service.AccountService
	progress   *service.ProgressService
	ssoEnabled bool
}

// NewAccountHandler creates a new AccountHandler. ssoEnabled shows the
// single sign-on link on the login page.
func NewAccountHandler(accounts *service.AccountService, progress *service.ProgressService, view middleware.Renderer, sm session.Manager, log logger.Logger, ssoEnabled bool) *AccountHandler {
	return &AccountHandler{
		base:       base{view: view, sessions: sm, log: log},
		accounts:   accounts,
		progress:   progress,
		ssoEnabled: ssoEnabled,
	}
}

func (h *AccountHandler) signupForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.render(w, r, "signup.html", map[string]interface{}{
		"Form":   service.SignupInput{},
		"Errors": service.ValidationErrors{},
	})
}

// signupHandler creates a regular account and signs it in.
func (h *AccountHandler) signupHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	in := service.SignupInput{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmpassword"),
	}
	user, err := h.accounts.Signup(r.Context(), in)
	if err != nil {
		if verrs, ok := service.AsValidationErrors(err); ok {
			in.Password, in.ConfirmPassword = "", ""
			return h.renderStatus(w, r, http.StatusUnprocessableEntity, "signup.html", map[string]interface{}{"Form": in, "Errors": verrs})
		}
		return &middleware.AppError{Error: err, Message: "Failed to create account", Code: http.StatusInternalServerError}
	}

	if appErr := h.signIn(r, user); appErr != nil {
		return appErr
	}
	h.flash(r, session.LevelSuccess, "Account created successfully!")
	next := h.sessions.PopString(r.Context(), session.NextURLKey)
	if !localPath(next) {
		next = "/"
	}
	return redirect(w, r, next)
}

func (h *AccountHandler) loginForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.render(w, r, "login.html", map[string]interface{}{
		"Form":       service.LoginInput{},
		"Errors":     service.ValidationErrors{},
		"SSOEnabled": h.ssoEnabled,
	})
}

// loginHandler checks the password and sends the user back to the page
// that asked for a login, or to their landing page.
func (h *AccountHandler) loginHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	in := service.LoginInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	user, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		verrs, ok := service.AsValidationErrors(err)
		if !ok && !errors.Is(err, service.ErrInvalidCredentials) {
			return &middleware.AppError{Error: err, Message: "Failed to log in", Code: http.StatusInternalServerError}
		}
		if !ok {
			verrs = service.ValidationErrors{}
			h.flash(r, session.LevelError, "Invalid credentials.")
		}
		in.Password = ""
		return h.renderStatus(w, r, http.StatusUnauthorized, "login.html", map[string]interface{}{"Form": in, "Errors": verrs, "SSOEnabled": h.ssoEnabled})
	}

	if appErr := h.signIn(r, user); appErr != nil {
		return appErr
	}
	return redirect(w, r, h.landing(r, user))
}

// landing pops the remembered next_url. Without one, administrators land on
// the dashboard and everybody else on the home page.
func (h *AccountHandler) landing(r *http.Request, user *data.User) string {
	next := h.sessions.PopString(r.Context(), session.NextURLKey)
	switch {
	case localPath(next):
		return next
	case user.IsAdmin:
		return "/admin-dashboard/"
	default:
		return "/"
	}
}

// signIn binds the session to user under a fresh token.
func (h *AccountHandler) signIn(r *http.Request, user *data.User) *middleware.AppError {
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), session.UserIDKey, user.ID)
	return nil
}

func (h *AccountHandler) logoutConfirm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.render(w, r, "logout_confirm.html", nil)
}

// logoutHandler destroys the session and starts a fresh one carrying only
// the goodbye message.
func (h *AccountHandler) logoutHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to log out", Code: http.StatusInternalServerError}
	}
	h.flash(r, session.LevelSuccess, "You have been logged out successfully.")
	return redirect(w, r, "/")
}

// profileHandler shows the signed-in account and its lesson progress.
func (h *AccountHandler) profileHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user, err := h.accounts.GetUser(r.Context(), currentUser(r).ID)
	if err != nil {
		return lookupError(err, "Failed to load profile")
	}
	progress, err := h.progress.ProgressByUser(r.Context(), user.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load progress", Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "profile.html", map[string]interface{}{"Account": user, "Progress": progress})
}

// progressHandler shows the completion figures and every tracked lesson.
func (h *AccountHandler) progressHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	overview, err := h.progress.Overview(r.Context(), currentUser(r).ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load progress", Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "progress.html", map[string]interface{}{"Overview": overview})
}
