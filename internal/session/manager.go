// Package session provides cookie-backed sessions used to carry one-time
// flash messages between a form submission and the following page render.
package session

import (
	"database/sql"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/librarium/internal/config"
)

// Flash statuses rendered by the message banner.
const (
	StatusSuccess = "Success!"
	StatusError   = "Error!"
)

const sessionKeyFlashes = "flashes"

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Status  string
	Message string
}

func init() {
	// Register types that will be stored in sessions
	gob.Register(Flash{})
	gob.Register([]Flash{})
}

// Manager wraps scs.SessionManager with flash-message helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager backed by the catalog
// database. The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, cfg config.Security) (*Manager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()

	// Configure session store (SQLite)
	store := sqlite3store.New(sqlDB)
	sm.Store = store

	// Configure session lifetime
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2 // Half of lifetime for inactivity

	// Configure cookie security
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// PutFlash queues a flash message for the next rendered page.
func (m *Manager) PutFlash(r *http.Request, status, message string) {
	flashes, _ := m.Get(r.Context(), sessionKeyFlashes).([]Flash)
	flashes = append(flashes, Flash{Status: status, Message: message})
	m.Put(r.Context(), sessionKeyFlashes, flashes)
}

// PutSuccess queues a success flash message.
func (m *Manager) PutSuccess(r *http.Request, message string) {
	m.PutFlash(r, StatusSuccess, message)
}

// PutError queues an error flash message.
func (m *Manager) PutError(r *http.Request, message string) {
	m.PutFlash(r, StatusError, message)
}

// PopFlashes returns all queued flash messages and removes them from the
// session, so each message is shown exactly once.
func (m *Manager) PopFlashes(r *http.Request) []Flash {
	flashes, _ := m.Pop(r.Context(), sessionKeyFlashes).([]Flash)
	return flashes
}
