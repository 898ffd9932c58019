// Package wire defines the payload types exchanged with clients over the
// real-time channel and the REST API. The server emits and accepts these
// verbatim; clients in other languages mirror them field for field.
package wire

import "encoding/json"

// SocketAuthPayload is the handshake auth object supplied by the client when
// opening a real-time connection. The explicit token takes priority over an
// Authorization header bearer value.
type SocketAuthPayload struct {
	// Token is the signed bearer credential.
	Token string `json:"token"`
}

// AuthResultPayload acknowledges an authenticate call on a live connection.
type AuthResultPayload struct {
	// Success reports whether the credential verified.
	Success bool `json:"success"`
	// UserID is the authenticated subject id (empty on failure).
	UserID string `json:"userId,omitempty"`
	// ExpiresAt is the credential expiry in milliseconds since epoch.
	ExpiresAt int64 `json:"expiresAt,omitempty"`
	// Error is a human-readable failure reason.
	Error string `json:"error,omitempty"`
}

// AccessErrorPayload reports an access-denied outcome for one inbound
// operation. The connection stays open; Event correlates the failure with
// the request that caused it.
type AccessErrorPayload struct {
	// Event is the name of the inbound event that was rejected.
	Event string `json:"event"`
	// Error is the rejection reason ("unauthenticated" or "unauthorized").
	Error string `json:"error"`
}

// ChatMessagePayload is the inbound "message" event body.
type ChatMessagePayload struct {
	// RoomID is the target room.
	RoomID string `json:"roomId"`
	// Text is the message content.
	Text string `json:"text"`
	// LocalID is an optional client-side idempotency key, echoed back.
	LocalID string `json:"localId,omitempty"`
}

// ChatMessageEvent is the outbound "message" event body fanned out to room
// members.
type ChatMessageEvent struct {
	// ID is the server-assigned message id.
	ID string `json:"id"`
	// RoomID is the room the message belongs to.
	RoomID string `json:"roomId"`
	// SenderID is the authoring user id.
	SenderID string `json:"senderId"`
	// Text is the message content.
	Text string `json:"text"`
	// LocalID echoes the client idempotency key when one was supplied.
	LocalID string `json:"localId,omitempty"`
	// CreatedAt is a wall-clock timestamp in milliseconds since epoch.
	CreatedAt int64 `json:"createdAt"`
}

// MarkSeenPayload is the inbound "mark-seen" event body. Silent connections
// use it to clear queued notifications without receiving live pushes.
type MarkSeenPayload struct {
	// UpTo is the newest notification id to clear, inclusive.
	UpTo string `json:"upTo"`
}

// MessageAck acknowledges an inbound "message" event.
type MessageAck struct {
	// Result is "success" or "error".
	Result string `json:"result"`
	// ID is the server-assigned message id on success.
	ID string `json:"id,omitempty"`
	// LocalID echoes the client idempotency key.
	LocalID string `json:"localId,omitempty"`
	// Error is the failure reason.
	Error string `json:"error,omitempty"`
}

// SeenAck acknowledges an inbound "mark-seen" event.
type SeenAck struct {
	// Result is "success" or "error".
	Result string `json:"result"`
	// Error is the failure reason.
	Error string `json:"error,omitempty"`
}

// Receipt classifies one fan-out target's reachability at dispatch time.
type Receipt struct {
	// UserID is the logical target user.
	UserID string `json:"userId"`
	// Reachability is "connected", "connectedSilent" or "unconnected".
	Reachability string `json:"reachability"`
}

// Notification is a queued offline-delivery record.
type Notification struct {
	// ID is the queue record id.
	ID string `json:"id"`
	// Event is the event name that could not be delivered live.
	Event string `json:"event"`
	// Payload is the original event payload.
	Payload json.RawMessage `json:"payload"`
	// CreatedAt is a wall-clock timestamp in milliseconds since epoch.
	CreatedAt int64 `json:"createdAt"`
}

// PushRequest asks the server to fan an event out to a set of users.
type PushRequest struct {
	// Event is the event name to emit.
	Event string `json:"event" binding:"required"`
	// Payload is the event body.
	Payload json.RawMessage `json:"payload"`
	// UserIDs are the logical target users. An empty set is a no-op.
	UserIDs []string `json:"userIds"`
}

// PushResponse reports per-target reachability for a PushRequest.
type PushResponse struct {
	// Receipts has one entry per unique target user.
	Receipts []Receipt `json:"receipts"`
}
