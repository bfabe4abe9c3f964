package middleware

import (
	"bytes"
	"fmt"
	"go-elearn-app/internal/logger"
	"io"
	"net/http"
)

// Renderer executes a named page template.
type Renderer interface {
	Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error
}

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Error is a middleware that converts handler errors into user-friendly error pages.
func Error(log logger.Logger, view Renderer) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					renderError(w, r, view, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()

			err := next(w, r)
			if err != nil {
				if err.Code >= http.StatusInternalServerError {
					log.Error(err.Error, err.Message)
				} else {
					log.Debug(fmt.Sprintf("%s: %v", err.Message, err.Error))
				}
				renderError(w, r, view, err.Code, err.Message)
			}
		})
	}
}

func renderError(w http.ResponseWriter, r *http.Request, view Renderer, code int, text string) {
	data := map[string]interface{}{
		"StatusCode": code,
		"StatusText": text,
	}
	if err := RenderStatus(w, r, view, code, "error.html", data); err != nil {
		fmt.Fprintf(w, "%d %s", code, text)
	}
}

// RenderStatus renders a page with a non-200 status. The page is executed
// before the header is written so that session changes made while rendering,
// such as popped flash messages, are still saved.
func RenderStatus(w http.ResponseWriter, r *http.Request, view Renderer, code int, name string, data map[string]interface{}) error {
	buf := new(bytes.Buffer)
	if err := view.Render(buf, r, name, data); err != nil {
		w.WriteHeader(code)
		return err
	}
	w.WriteHeader(code)
	_, err := buf.WriteTo(w)
	return err
}
