package handlers

// AuthContext carries authenticated connection identity information into
// handler functions. It intentionally excludes transport-specific types.
type AuthContext struct {
	userID string
	connID string
	silent bool
}

// NewAuthContext constructs an AuthContext for a single inbound event.
func NewAuthContext(userID, connID string, silent bool) AuthContext {
	return AuthContext{
		userID: userID,
		connID: connID,
		silent: silent,
	}
}

// UserID returns the authenticated user id.
func (a AuthContext) UserID() string {
	return a.userID
}

// ConnID returns the caller connection id.
func (a AuthContext) ConnID() string {
	return a.connID
}

// Silent reports whether the calling connection is a background
// (presence-only) connection.
func (a AuthContext) Silent() bool {
	return a.silent
}
