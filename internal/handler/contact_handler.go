package handler

import (
	"errors"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/service"
	"go-elearn-app/internal/session"
	"net/http"
)

// ContactHandler serves the public contact form.
type ContactHandler struct {
	base
	contacts *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *service.ContactService, view middleware.Renderer, sm session.Manager, log logger.Logger) *ContactHandler {
	return &ContactHandler{base: base{view: view, sessions: sm, log: log}, contacts: contacts}
}

func (h *ContactHandler) contactForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	in := service.ContactInput{}
	if user := middleware.GetUserInfo(r.Context()); user != nil {
		in.Name, in.Email = user.Username, user.Email
	}
	return h.render(w, r, "contact.html", map[string]interface{}{"Form": in, "Errors": service.ValidationErrors{}})
}

// contactHandler stores the message. A failed operator email still keeps
// the message and is reported to the visitor as a warning.
func (h *ContactHandler) contactHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	in := service.ContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
	_, err := h.contacts.Submit(r.Context(), in)
	switch {
	case err == nil:
		h.flash(r, session.LevelSuccess, "Your message has been sent successfully!")
	case errors.Is(err, service.ErrNotDelivered):
		h.flash(r, session.LevelWarning, "Your message was saved, but we could not send the notification email. We will get back to you soon.")
	default:
		return &middleware.AppError{Error: err, Message: "Failed to send message", Code: http.StatusInternalServerError}
	}
	return redirect(w, r, "/contact/")
}
