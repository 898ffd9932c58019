package handlers

import (
	"context"
	"time"

	"github.com/parley-chat/server/internal/store"
)

type fakeRoomQueries struct {
	getMemberIDs func(ctx context.Context, roomID string) ([]string, error)
	isMember     func(ctx context.Context, roomID, userID string) (bool, error)
}

func (f fakeRoomQueries) GetRoomMemberIDs(ctx context.Context, roomID string) ([]string, error) {
	return f.getMemberIDs(ctx, roomID)
}

func (f fakeRoomQueries) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	return f.isMember(ctx, roomID, userID)
}

type fakeMessageQueries struct {
	create func(ctx context.Context, arg store.CreateMessageParams) (store.Message, error)
}

func (f fakeMessageQueries) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (store.Message, error) {
	if f.create == nil {
		return store.Message{
			ID:        arg.ID,
			RoomID:    arg.RoomID,
			SenderID:  arg.SenderID,
			Text:      arg.Text,
			LocalID:   arg.LocalID,
			CreatedAt: arg.CreatedAt,
		}, nil
	}
	return f.create(ctx, arg)
}

type fakeNotificationQueries struct {
	deleteUpTo func(ctx context.Context, userID, upTo string) error
}

func (f fakeNotificationQueries) DeleteNotificationsUpTo(ctx context.Context, userID, upTo string) error {
	return f.deleteUpTo(ctx, userID, upTo)
}

var testTime = time.Unix(1_700_000_000, 0)

func newTestDeps(rooms RoomQueries, messages MessageQueries, notifications NotificationQueries) Deps {
	return NewDeps(rooms, messages, notifications,
		func() time.Time { return testTime },
		func() string { return "msg-1" },
	)
}
