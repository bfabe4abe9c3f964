package handler

import (
	"errors"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/session"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// base carries what every handler needs to answer a request.
type base struct {
	view     middleware.Renderer
	sessions session.Manager
	log      logger.Logger
}

// render executes a page template and reports failures as a 500.
func (b *base) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) *middleware.AppError {
	if err := b.view.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}

// renderStatus is render for pages answered with a status other than 200.
func (b *base) renderStatus(w http.ResponseWriter, r *http.Request, code int, name string, data map[string]interface{}) *middleware.AppError {
	if err := middleware.RenderStatus(w, r, b.view, code, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}

// flash queues a message for the next rendered page.
func (b *base) flash(r *http.Request, level, message string) {
	session.AddFlash(r.Context(), b.sessions, level, message)
}

// redirect answers a successful form post.
func redirect(w http.ResponseWriter, r *http.Request, url string) *middleware.AppError {
	http.Redirect(w, r, url, http.StatusSeeOther)
	return nil
}

// pathID parses the {id} URL parameter. Malformed ids are reported as not
// found, the same as ids that do not exist.
func pathID(r *http.Request) (int64, *middleware.AppError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
	}
	return id, nil
}

// lookupError maps a failed read to a 404 when the record is missing and
// to a 500 otherwise.
func lookupError(err error, message string) *middleware.AppError {
	if errors.Is(err, data.ErrNotFound) {
		return &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
	}
	return &middleware.AppError{Error: err, Message: message, Code: http.StatusInternalServerError}
}

// localPath reports whether next is a same-site path that is safe to
// redirect to.
func localPath(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}

// currentUser returns the signed-in user. Routes calling it sit behind
// RequireLogin or RequireAdmin.
func currentUser(r *http.Request) *middleware.UserInfo {
	return middleware.GetUserInfo(r.Context())
}
