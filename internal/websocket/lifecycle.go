package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parley-chat/server/internal/auth"
	"github.com/parley-chat/server/internal/registry"
	"github.com/parley-chat/server/pkg/logger"
)

// TokenVerifier validates a bearer credential and returns its raw claims.
type TokenVerifier interface {
	VerifyToken(token string) (map[string]any, error)
}

// Lifecycle orchestrates connect/authenticate/demote/disconnect transitions
// for one gateway namespace and keeps the membership index and expiry
// registry in step with them.
//
// Per-connection operations are strictly ordered: a session authenticates,
// then joins its groups, then records its registry entry, and only then is
// eligible for fan-out. Across connections nothing is serialized.
type Lifecycle struct {
	namespace string
	verifier  TokenVerifier
	registry  registry.Registry
	groups    *Groups
	margin    time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewLifecycle creates a lifecycle manager. A nil clock defaults to
// time.Now.
func NewLifecycle(namespace string, verifier TokenVerifier, reg registry.Registry, groups *Groups, margin time.Duration, now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{
		namespace: namespace,
		verifier:  verifier,
		registry:  reg,
		groups:    groups,
		margin:    margin,
		now:       now,
		sessions:  make(map[string]*Session),
	}
}

// Groups exposes the membership index this lifecycle maintains.
func (l *Lifecycle) Groups() *Groups {
	return l.groups
}

// Connect allocates an anonymous session for a freshly opened connection.
// The silent flag is fixed for the connection's lifetime.
func (l *Lifecycle) Connect(conn Conn, silent bool) *Session {
	sess := newSession(conn, silent)
	l.mu.Lock()
	l.sessions[conn.ID()] = sess
	l.mu.Unlock()
	return sess
}

// Session looks up the live session for a connection id.
func (l *Lifecycle) Session(connID string) *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions[connID]
}

// Authenticate verifies a token and promotes the session. On failure the
// session is left (or returned to) anonymous and the connection stays open;
// the error is for reporting on the triggering operation only.
//
// Re-authenticating an already authenticated session repeats the transition
// in place: group membership is re-derived and the registry score
// overwritten, never duplicated.
func (l *Lifecycle) Authenticate(ctx context.Context, sess *Session, token string) error {
	claims, err := l.verifier.VerifyToken(token)
	if err != nil {
		l.Demote(ctx, sess)
		return fmt.Errorf("verify token: %w", err)
	}

	identity := auth.FromClaims(claims)
	if identity.UserID == "" {
		l.Demote(ctx, sess)
		return fmt.Errorf("token missing subject")
	}
	if identity.ExpiresAt == nil {
		l.Demote(ctx, sess)
		return fmt.Errorf("token missing expiry")
	}
	// A credential past its eviction deadline would only be swept on the
	// next pass; reject it up front instead.
	if l.now().After(identity.ExpiresAt.Add(-l.margin)) {
		l.Demote(ctx, sess)
		return fmt.Errorf("token expired")
	}

	// A re-auth under a different subject must not leave stale membership.
	if prev := sess.UserID(); prev != "" && prev != identity.UserID {
		l.Demote(ctx, sess)
	}

	sess.setIdentity(&identity, identity.ExpiresAt)

	connID := sess.ID()
	l.groups.Join(SilentUserGroup(identity.UserID), sess.Conn())
	if !sess.Silent() {
		l.groups.Join(UserGroup(identity.UserID), sess.Conn())
	}

	if err := l.registry.Record(ctx, l.namespace, connID, *identity.ExpiresAt, l.margin); err != nil {
		logger.Warnf("Failed to record expiry for connection %s: %v", connID, err)
	}

	logger.Debugf("Session authenticated: user=%s conn=%s silent=%t expiresAt=%s",
		identity.UserID, connID, sess.Silent(), identity.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Demote returns a session to anonymous: identity cleared, group membership
// dropped, registry entry removed. The transport stays open so the client
// may re-authenticate without reconnecting.
func (l *Lifecycle) Demote(ctx context.Context, sess *Session) {
	userID := sess.clearIdentity()
	connID := sess.ID()
	if userID != "" {
		l.groups.Leave(UserGroup(userID), connID)
		l.groups.Leave(SilentUserGroup(userID), connID)
	}
	if err := l.registry.Remove(ctx, l.namespace, connID); err != nil {
		logger.Warnf("Failed to remove expiry entry for connection %s: %v", connID, err)
	}
	if userID != "" {
		logger.Debugf("Session demoted to anonymous: user=%s conn=%s", userID, connID)
	}
}

// Disconnect tears a session down on transport close. The registry entry is
// removed explicitly; the sweep must not need to wait out the TTL for it.
func (l *Lifecycle) Disconnect(ctx context.Context, sess *Session) {
	connID := sess.ID()
	l.groups.LeaveAll(connID)
	sess.clearIdentity()
	if err := l.registry.Remove(ctx, l.namespace, connID); err != nil {
		logger.Warnf("Failed to remove expiry entry for connection %s: %v", connID, err)
	}

	l.mu.Lock()
	delete(l.sessions, connID)
	l.mu.Unlock()
}

// Guard authorizes one inbound operation. Public operations always pass.
// For the rest, a just-expired session is demoted here and now rather than
// left for the next sweep, then the principal and any required roles are
// checked. Errors carry the event name.
func (l *Lifecycle) Guard(ctx context.Context, sess *Session, event string, public bool, roles ...string) error {
	if public {
		return nil
	}
	if sess.IsExpired(l.now(), l.margin) {
		l.Demote(ctx, sess)
	}
	principal := sess.Principal()
	if !principal.IsAuthenticated() {
		return &AccessError{Event: event, Reason: ErrUnauthenticated}
	}
	if len(roles) > 0 && !principal.AnyOf(roles...) {
		return &AccessError{Event: event, Reason: ErrUnauthorized}
	}
	return nil
}

// SweepOnce drains due entries from this namespace's registry and demotes
// the matching local sessions. Entries recorded by other processes resolve
// to no local session; their owners demote through their own Guard checks,
// which do not depend on the registry entry still existing.
func (l *Lifecycle) SweepOnce(ctx context.Context) (int, error) {
	ids, err := l.registry.Sweep(ctx, l.namespace)
	if err != nil {
		return 0, err
	}
	demoted := 0
	for _, connID := range ids {
		sess := l.Session(connID)
		if sess == nil {
			continue
		}
		l.Demote(ctx, sess)
		demoted++
	}
	if len(ids) > 0 {
		logger.Infof("Expiry sweep: namespace=%s due=%d demoted=%d", l.namespace, len(ids), demoted)
	}
	return demoted, nil
}
