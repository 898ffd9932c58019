package websocket

import "errors"

// ErrUnauthenticated rejects a non-public operation attempted without a
// valid principal. The connection stays open.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrUnauthorized rejects a role-gated operation attempted by a principal
// lacking the required role.
var ErrUnauthorized = errors.New("unauthorized")

// AccessError tags an access rejection with the inbound event that caused
// it, so the caller can correlate the failure with its request.
type AccessError struct {
	// Event is the inbound event name.
	Event string
	// Reason is ErrUnauthenticated or ErrUnauthorized.
	Reason error
}

func (e *AccessError) Error() string {
	return e.Event + ": " + e.Reason.Error()
}

func (e *AccessError) Unwrap() error {
	return e.Reason
}
