package websocket

import (
	"sync"
	"time"

	"github.com/parley-chat/server/internal/auth"
)

// Session is the per-connection state: identity, expiry instant and the
// silent flag. The silent flag is fixed at connect time; identity and expiry
// change on every (re-)authentication and demotion. Both the connection's
// own handler and the sweeper touch identity state, hence the mutex.
type Session struct {
	conn   Conn
	silent bool

	mu        sync.Mutex
	identity  *auth.Identity
	expiresAt *time.Time
}

func newSession(conn Conn, silent bool) *Session {
	return &Session{conn: conn, silent: silent}
}

// ID returns the connection id.
func (s *Session) ID() string {
	return s.conn.ID()
}

// Conn returns the transport handle.
func (s *Session) Conn() Conn {
	return s.conn
}

// Silent reports whether the connection was opened as a background
// (presence-only) connection.
func (s *Session) Silent() bool {
	return s.silent
}

// Principal returns the authorization-facing view of the session. Anonymous
// when no identity is attached.
func (s *Session) Principal() auth.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return auth.Anonymous
	}
	return auth.NewPrincipal(s.identity)
}

// UserID returns the authenticated subject id, or empty.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.UserID
}

// ExpiresAt returns the credential expiry instant, when authenticated.
func (s *Session) ExpiresAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// IsExpired reports whether the session's eviction deadline (credential
// expiry minus the margin) has passed. An anonymous session is never
// expired; it has nothing to evict.
func (s *Session) IsExpired(now time.Time, margin time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil || s.expiresAt == nil {
		return false
	}
	return now.After(s.expiresAt.Add(-margin))
}

func (s *Session) setIdentity(identity *auth.Identity, expiresAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.expiresAt = expiresAt
}

// clearIdentity returns the previously attached user id so callers can drop
// group membership for it.
func (s *Session) clearIdentity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := ""
	if s.identity != nil {
		userID = s.identity.UserID
	}
	s.identity = nil
	s.expiresAt = nil
	return userID
}
