package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"go-elearn-app/internal/config"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys shared by the middleware and the handlers.
const (
	UserIDKey  = "user_id"
	NextURLKey = "next_url"
	StateKey   = "oidc_state"
	flashKey   = "flashes"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	Get(ctx context.Context, key string) interface{}
	Pop(ctx context.Context, key string) interface{}
	GetString(ctx context.Context, key string) string
	GetInt64(ctx context.Context, key string) int64
	PopString(ctx context.Context, key string) string
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}

var _ Manager = (*scs.SessionManager)(nil)

// Flash levels understood by the base layout.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

func init() {
	// scs encodes session values with gob.
	gob.Register([]Flash{})
}

// AddFlash queues a message for the next page render.
func AddFlash(ctx context.Context, sm Manager, level, message string) {
	flashes, _ := sm.Get(ctx, flashKey).([]Flash)
	sm.Put(ctx, flashKey, append(flashes, Flash{Level: level, Message: message}))
}

// PopFlashes returns and clears the queued messages.
func PopFlashes(ctx context.Context, sm Manager) []Flash {
	flashes, _ := sm.Pop(ctx, flashKey).([]Flash)
	return flashes
}

// New creates a session manager persisting sessions in the application
// database, using the store that matches the driver.
func New(cfg config.SessionConfig, driver string, db *sql.DB, secure bool) (*scs.SessionManager, error) {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db)
	case "postgres":
		sm.Store = postgresstore.New(db)
	case "sqlite3":
		sm.Store = sqlite3store.New(db)
	default:
		return nil, fmt.Errorf("no session store for driver %q", driver)
	}
	sm.Lifetime = time.Duration(cfg.Lifetime) * time.Hour
	if cfg.CookieName != "" {
		sm.Cookie.Name = cfg.CookieName
	}
	sm.Cookie.Persist = true
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm, nil
}
