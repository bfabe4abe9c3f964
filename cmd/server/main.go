package main

import (
	"context"
	"errors"
	"fmt"
	"go-elearn-app/internal/auth"
	"go-elearn-app/internal/config"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/handler"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/mail"
	"go-elearn-app/internal/ratelimit"
	"go-elearn-app/internal/scheduler"
	"go-elearn-app/internal/service"
	"go-elearn-app/internal/session"
	"go-elearn-app/internal/storage"
	"go-elearn-app/internal/view"
	"go-elearn-app/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB, cfg.DB.Migrations); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager, err := session.New(cfg.Session, cfg.DB.Driver, db.DB, cfg.Server.TLS.Enabled)
	if err != nil {
		log.Fatal(err, "Failed to initialize sessions")
	}

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)

	var authenticator *auth.Authenticator
	if cfg.OIDC.Enabled() {
		authenticator, err = auth.NewAuthenticator(context.Background(), &cfg.OIDC)
		if err != nil {
			log.Fatal(err, "Failed to initialize authenticator")
		}
		log.Info("Single sign-on enabled.")
	}
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS, sessionManager)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Outgoing Mail, Image Storage and Rate Limiting ---
	mailer, err := mail.New(cfg.Mail, log)
	if err != nil {
		log.Fatal(err, "Failed to initialize mailer")
	}
	images, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal(err, "Failed to initialize image storage")
	}
	var mediaDir string
	if fileStore, ok := images.(*storage.FileStore); ok {
		mediaDir = fileStore.Dir()
	}

	var limiters handler.Limiters
	if cfg.Redis.Addr != "" {
		client, err := ratelimit.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Fatal(err, "Failed to connect to Redis")
		}
		defer client.Close()
		limiters = newLimiters(client, cfg.RateLimit, log)
		log.Info("Rate limiting enabled.")
	}

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	courseRepository := data.NewSQLCourseRepository(db)
	progressRepository := data.NewProgressRepository(db)
	userRepository := data.NewUserRepository(db)
	validator := service.NewValidator()

	catalogService := service.NewCatalogService(courseRepository, data.NewCategoryRepository(db), data.NewLessonRepository(db),
		progressRepository, images, validator, log)
	progressService := service.NewProgressService(progressRepository, courseRepository, userRepository)
	accountService := service.NewAccountService(userRepository, validator)
	contactService, err := service.NewContactService(data.NewContactRepository(db), mailer, cfg.Mail.Operator, validator, log)
	if err != nil {
		log.Fatal(err, "Failed to initialize contact form")
	}

	deps := handler.Dependencies{
		Catalog:  handler.NewCatalogHandler(catalogService, progressService, viewService, sessionManager, log),
		Accounts: handler.NewAccountHandler(accountService, progressService, viewService, sessionManager, log, authenticator != nil),
		Admin:    handler.NewAdminHandler(catalogService, progressService, viewService, sessionManager, log),
		Contact:  handler.NewContactHandler(contactService, viewService, sessionManager, log),
		SEO:      handler.NewSeoHandler(catalogService, cfg.Server.BaseURL),
		Sessions: sessionManager,
		Users:    userRepository,
		Enforcer: enforcer,
		View:     viewService,
		Log:      log,
		Limiters: limiters,
		Static:   web.Static(),
		MediaDir: mediaDir,
	}
	if authenticator != nil {
		deps.SSO = handler.NewAuthHandler(authenticator, accountService, viewService, sessionManager, log)
	}

	// --- Background Jobs ---
	jobs := scheduler.New(log)
	if err := jobs.ScheduleContactRetry(contactService, cfg.Mail.RetryInterval); err != nil {
		log.Fatal(err, "Failed to schedule contact retries")
	}
	jobs.Start()
	defer jobs.Stop()

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(deps)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// newLimiters builds one fixed-window limiter per throttled form. A zero
// quota leaves that form unthrottled.
func newLimiters(client *redis.Client, cfg config.RateLimitConfig, log logger.Logger) handler.Limiters {
	build := func(scope string, perMinute int) ratelimit.Limiter {
		if perMinute <= 0 {
			return nil
		}
		l, err := ratelimit.NewFixedWindowLimiter(client, "elearn:ratelimit", perMinute, time.Minute)
		if err != nil {
			log.Fatal(err, fmt.Sprintf("Failed to create %s limiter", scope))
		}
		return l
	}
	return handler.Limiters{
		Login:   build("login", cfg.LoginPerMinute),
		Signup:  build("signup", cfg.SignupPerMinute),
		Contact: build("contact", cfg.ContactPerMinute),
	}
}
