package middleware

import (
	"context"
	"errors"
	"fmt"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/session"
	"net/http"

	"github.com/casbin/casbin/v2"
)

// UserFinder looks up the account behind a session.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*data.User, error)
}

// Authenticate loads the user referenced by the session into the request
// context. A session pointing at a deleted user is treated as anonymous.
func Authenticate(sm session.Manager, users UserFinder, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sm.GetInt64(r.Context(), session.UserIDKey)
			if id == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, data.ErrNotFound) {
					sm.Remove(r.Context(), session.UserIDKey)
				} else {
					log.Error(err, "Failed to load session user")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := SetUserInfo(r.Context(), &UserInfo{
				ID:       user.ID,
				Username: user.Username,
				Email:    user.Email,
				IsAdmin:  user.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin lets authenticated requests through. Anonymous requests get
// the login-required page, and the URI they asked for is remembered so the
// login handler can send them back.
func RequireLogin(sm session.Manager, view Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAuthenticated(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			sm.Put(r.Context(), session.NextURLKey, r.URL.RequestURI())
			if err := RenderStatus(w, r, view, http.StatusUnauthorized, "login_required.html", nil); err != nil {
				fmt.Fprintln(w, "Login required")
			}
		})
	}
}

// RequireAdmin checks the user's role against the casbin policy for the
// requested path and method. Anonymous requests are sent to the login page.
func RequireAdmin(e casbin.IEnforcer, view Renderer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserInfo(r.Context())
			if user == nil {
				http.Redirect(w, r, "/login/", http.StatusFound)
				return
			}

			allowed, err := e.Enforce(user.Role(), r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization check failed")
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				if err := RenderStatus(w, r, view, http.StatusForbidden, "admin_required.html", nil); err != nil {
					fmt.Fprintln(w, "Forbidden")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
