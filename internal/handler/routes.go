package handler

import (
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/middleware"
	"go-elearn-app/internal/ratelimit"
	"go-elearn-app/internal/session"
	"io/fs"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Limiters throttle the public form posts. A nil limiter disables throttling.
type Limiters struct {
	Login   ratelimit.Limiter
	Signup  ratelimit.Limiter
	Contact ratelimit.Limiter
}

// Dependencies are the handlers and middleware collaborators of the router.
type Dependencies struct {
	Catalog  *CatalogHandler
	Accounts *AccountHandler
	Admin    *AdminHandler
	Contact  *ContactHandler
	SEO      *SeoHandler
	SSO      *AuthHandler // nil when single sign-on is disabled

	Sessions session.Manager
	Users    middleware.UserFinder
	Enforcer casbin.IEnforcer
	View     middleware.Renderer
	Log      logger.Logger
	Limiters Limiters

	Static   fs.FS  // embedded assets, rooted at their directory
	MediaDir string // local image directory, empty when images live elsewhere
}

// NewRouter creates and configures a new chi router.
func NewRouter(d Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))

	// Assets need neither a session nor a user.
	r.Handle("/static/*", http.StripPrefix("/static/", noDirListing(http.FileServer(http.FS(d.Static)))))
	if d.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", noDirListing(http.FileServer(http.Dir(d.MediaDir)))))
	}
	r.Get("/robots.txt", d.SEO.robotsHandler)

	withError := middleware.Error(d.Log, d.View)
	requireLogin := middleware.RequireLogin(d.Sessions, d.View)

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.LoadAndSave)
		r.Use(middleware.Authenticate(d.Sessions, d.Users, d.Log))

		r.Method(http.MethodGet, "/sitemap.xml", withError(d.SEO.sitemapHandler))

		// Public routes
		r.Method(http.MethodGet, "/", withError(d.Catalog.indexHandler))
		r.Method(http.MethodGet, "/about/", withError(d.Catalog.aboutHandler))
		r.Method(http.MethodGet, "/courses/", withError(d.Catalog.listHandler))
		r.Method(http.MethodGet, "/course/{id}/", withError(d.Catalog.detailHandler))
		r.Method(http.MethodGet, "/admin-required/", withError(func(w http.ResponseWriter, r *http.Request) *middleware.AppError {
			return d.Accounts.renderStatus(w, r, http.StatusForbidden, "admin_required.html", nil)
		}))

		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(d.Limiters.Contact, "contact"))
			r.Method(http.MethodGet, "/contact/", withError(d.Contact.contactForm))
			r.Method(http.MethodPost, "/contact/", withError(d.Contact.contactHandler))
		})

		// Account routes
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(d.Limiters.Signup, "signup"))
			r.Method(http.MethodGet, "/signup/", withError(d.Accounts.signupForm))
			r.Method(http.MethodPost, "/signup/", withError(d.Accounts.signupHandler))
		})
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(d.Limiters.Login, "login"))
			r.Method(http.MethodGet, "/login/", withError(d.Accounts.loginForm))
			r.Method(http.MethodPost, "/login/", withError(d.Accounts.loginHandler))
		})
		r.Method(http.MethodGet, "/logout/", withError(d.Accounts.logoutConfirm))
		r.Method(http.MethodPost, "/logout/", withError(d.Accounts.logoutHandler))

		// Single sign-on routes
		if d.SSO != nil {
			r.Method(http.MethodGet, "/auth/login", withError(d.SSO.handleLogin))
			r.Method(http.MethodGet, "/auth/callback", withError(d.SSO.handleCallback))
		}

		// Learner routes
		r.Group(func(r chi.Router) {
			r.Use(requireLogin)
			r.Method(http.MethodPost, "/course/{id}/", withError(d.Catalog.actionHandler))
			r.Method(http.MethodGet, "/course/{id}/enroll/", withError(d.Catalog.enrollHandler))
			r.Method(http.MethodPost, "/course/{id}/enroll/", withError(d.Catalog.enrollHandler))
			r.Method(http.MethodGet, "/enrolled-courses/", withError(d.Catalog.enrolledHandler))
			r.Method(http.MethodGet, "/progress/", withError(d.Accounts.progressHandler))
			r.Method(http.MethodGet, "/accounts/profile/", withError(d.Accounts.profileHandler))
		})

		// Administrator routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Enforcer, d.View, d.Log))
			r.Method(http.MethodGet, "/admin-dashboard/", withError(d.Admin.dashboardHandler))
			r.Method(http.MethodGet, "/admin/add-course/", withError(d.Admin.addForm))
			r.Method(http.MethodPost, "/admin/add-course/", withError(d.Admin.addHandler))
			r.Method(http.MethodGet, "/admin/edit-course/{id}/", withError(d.Admin.editForm))
			r.Method(http.MethodPost, "/admin/edit-course/{id}/", withError(d.Admin.editHandler))
			r.Method(http.MethodGet, "/admin/delete-course/{id}/", withError(d.Admin.deleteConfirm))
			r.Method(http.MethodPost, "/admin/delete-course/{id}/", withError(d.Admin.deleteHandler))
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			withError(func(http.ResponseWriter, *http.Request) *middleware.AppError {
				return &middleware.AppError{Message: "Page not found", Code: http.StatusNotFound}
			}).ServeHTTP(w, r)
		})
	})

	return r
}

// noDirListing hides directory indexes of a file server.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
