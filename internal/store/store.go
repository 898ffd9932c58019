// Package store is the hand-written query layer over the SQLite database:
// rooms and their membership, chat messages, and the queued-notification
// fallback for users the fan-out layer could not reach live.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db *sql.DB
}

// New creates a query layer over an open database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Room is a chat room row.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Message is a persisted chat message row.
type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	Text      string
	LocalID   sql.NullString
	CreatedAt time.Time
}

// Notification is a queued offline-delivery row.
type Notification struct {
	ID        string
	UserID    string
	Event     string
	Payload   string
	CreatedAt time.Time
}

// CreateRoomParams names the arguments of CreateRoom.
type CreateRoomParams struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CreateRoom inserts a room.
func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, created_at) VALUES (?, ?, ?)`,
		arg.ID, arg.Name, arg.CreatedAt,
	)
	if err != nil {
		return Room{}, fmt.Errorf("create room: %w", err)
	}
	return Room{ID: arg.ID, Name: arg.Name, CreatedAt: arg.CreatedAt}, nil
}

// AddRoomMemberParams names the arguments of AddRoomMember.
type AddRoomMemberParams struct {
	RoomID string
	UserID string
}

// AddRoomMember adds a user to a room. Adding an existing member is a no-op.
func (q *Queries) AddRoomMember(ctx context.Context, arg AddRoomMemberParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO room_members (room_id, user_id) VALUES (?, ?)`,
		arg.RoomID, arg.UserID,
	)
	if err != nil {
		return fmt.Errorf("add room member: %w", err)
	}
	return nil
}

// GetRoomMemberIDs lists the user ids belonging to a room.
func (q *Queries) GetRoomMemberIDs(ctx context.Context, roomID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT user_id FROM room_members WHERE room_id = ? ORDER BY user_id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("get room members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsRoomMember reports whether a user belongs to a room.
func (q *Queries) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	var count int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check room member: %w", err)
	}
	return count > 0, nil
}

// CreateMessageParams names the arguments of CreateMessage.
type CreateMessageParams struct {
	ID        string
	RoomID    string
	SenderID  string
	Text      string
	LocalID   sql.NullString
	CreatedAt time.Time
}

// CreateMessage inserts a chat message.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO messages (id, room_id, sender_id, text, local_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.RoomID, arg.SenderID, arg.Text, arg.LocalID, arg.CreatedAt,
	)
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return Message{
		ID:        arg.ID,
		RoomID:    arg.RoomID,
		SenderID:  arg.SenderID,
		Text:      arg.Text,
		LocalID:   arg.LocalID,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// EnqueueNotificationParams names the arguments of EnqueueNotification.
type EnqueueNotificationParams struct {
	ID        string
	UserID    string
	Event     string
	Payload   string
	CreatedAt time.Time
}

// EnqueueNotification persists a queued record for a user the dispatcher
// reported as unconnected.
func (q *Queries) EnqueueNotification(ctx context.Context, arg EnqueueNotificationParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, event, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		arg.ID, arg.UserID, arg.Event, arg.Payload, arg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// ListPendingNotifications returns a user's queued notifications, oldest
// first.
func (q *Queries) ListPendingNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, event, payload, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Event, &n.Payload, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNotificationsUpTo clears a user's queued notifications up to and
// including the given record. Unknown ids clear nothing.
func (q *Queries) DeleteNotificationsUpTo(ctx context.Context, userID, upTo string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM notifications
		 WHERE user_id = ?
		   AND created_at <= (SELECT created_at FROM notifications WHERE id = ? AND user_id = ?)`,
		userID, upTo, userID,
	)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
