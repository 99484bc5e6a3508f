// Package timer tracks the in-flight reading timer between requests. The
// timer holds only a book reference and a start time; stopping it is what
// writes a reading session row. State lives in a cookie session backed by
// the same SQLite file as the rest of the data.
package timer

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"booktracker/internal/config"
)

// Session data keys
const (
	sessionKeyBookID    = "timer_book_id"
	sessionKeyStartedAt = "timer_started_at"
)

func init() {
	gob.Register(time.Time{})
}

// Active describes a running timer.
type Active struct {
	BookID    uint          `json:"book_id"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"-"`
}

// Manager wraps scs.SessionManager with timer-specific methods.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager. The sqlDB parameter
// should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, cfg config.Timer) (*Manager, error) {
	// Create the cookie session table if it doesn't exist
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
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime

	sm.Cookie.Name = "tracker_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// Start records a new timer for the given book, replacing any previous one.
func (m *Manager) Start(r *http.Request, bookID uint) error {
	// Renew token to prevent session fixation
	if err := m.RenewToken(r.Context()); err != nil {
		return err
	}
	m.Put(r.Context(), sessionKeyBookID, int(bookID))
	m.Put(r.Context(), sessionKeyStartedAt, time.Now().UTC())
	return nil
}

// Current returns the running timer, or nil when none is active.
func (m *Manager) Current(r *http.Request) *Active {
	bookID := m.GetInt(r.Context(), sessionKeyBookID)
	if bookID == 0 {
		return nil
	}
	startedAt, ok := m.Get(r.Context(), sessionKeyStartedAt).(time.Time)
	if !ok {
		return nil
	}
	return &Active{
		BookID:    uint(bookID),
		StartedAt: startedAt,
		Elapsed:   time.Since(startedAt),
	}
}

// Clear removes the running timer.
func (m *Manager) Clear(r *http.Request) {
	m.Remove(r.Context(), sessionKeyBookID)
	m.Remove(r.Context(), sessionKeyStartedAt)
}
