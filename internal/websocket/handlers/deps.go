package handlers

import (
	"context"
	"time"

	"github.com/parley-chat/server/internal/store"
)

// RoomQueries is the subset of room queries used by gateway handlers.
type RoomQueries interface {
	GetRoomMemberIDs(ctx context.Context, roomID string) ([]string, error)
	IsRoomMember(ctx context.Context, roomID, userID string) (bool, error)
}

// MessageQueries is the subset of message queries used by gateway handlers.
type MessageQueries interface {
	CreateMessage(ctx context.Context, arg store.CreateMessageParams) (store.Message, error)
}

// NotificationQueries is the subset of notification queries used by gateway
// handlers.
type NotificationQueries interface {
	DeleteNotificationsUpTo(ctx context.Context, userID, upTo string) error
}

// Deps holds the narrow dependencies required by gateway event handlers.
type Deps struct {
	rooms         RoomQueries
	messages      MessageQueries
	notifications NotificationQueries
	now           func() time.Time
	newID         func() string
}

// NewDeps builds a dependency bundle for handler calls.
func NewDeps(
	rooms RoomQueries,
	messages MessageQueries,
	notifications NotificationQueries,
	now func() time.Time,
	newID func() string,
) Deps {
	return Deps{
		rooms:         rooms,
		messages:      messages,
		notifications: notifications,
		now:           now,
		newID:         newID,
	}
}

func (d Deps) Rooms() RoomQueries                 { return d.rooms }
func (d Deps) Messages() MessageQueries           { return d.messages }
func (d Deps) Notifications() NotificationQueries { return d.notifications }
func (d Deps) Now() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}
func (d Deps) NewID() string {
	if d.newID != nil {
		return d.newID()
	}
	return ""
}
