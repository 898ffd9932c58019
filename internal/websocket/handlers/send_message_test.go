package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/parley-chat/server/internal/store"
	"github.com/parley-chat/server/pkg/wire"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_Success(t *testing.T) {
	var created store.CreateMessageParams
	rooms := fakeRoomQueries{
		isMember:     func(_ context.Context, roomID, userID string) (bool, error) { return true, nil },
		getMemberIDs: func(context.Context, string) ([]string, error) { return []string{"alice", "bob"}, nil },
	}
	messages := fakeMessageQueries{
		create: func(_ context.Context, arg store.CreateMessageParams) (store.Message, error) {
			created = arg
			return store.Message{
				ID:        arg.ID,
				RoomID:    arg.RoomID,
				SenderID:  arg.SenderID,
				Text:      arg.Text,
				LocalID:   arg.LocalID,
				CreatedAt: arg.CreatedAt,
			}, nil
		},
	}
	deps := newTestDeps(rooms, messages, nil)
	auth := NewAuthContext("alice", "conn-1", false)

	result := SendMessage(context.Background(), deps, auth, wire.ChatMessagePayload{
		RoomID:  "room-1",
		Text:    "hello",
		LocalID: "local-7",
	})

	ack, ok := result.Ack().(wire.MessageAck)
	require.True(t, ok)
	require.Equal(t, "success", ack.Result)
	require.Equal(t, "msg-1", ack.ID)
	require.Equal(t, "local-7", ack.LocalID)

	require.Equal(t, "msg-1", created.ID)
	require.Equal(t, "alice", created.SenderID)
	require.True(t, created.LocalID.Valid)
	require.Equal(t, "local-7", created.LocalID.String)
	require.Equal(t, testTime, created.CreatedAt)

	require.Len(t, result.Deliveries(), 1)
	delivery := result.Deliveries()[0]
	require.Equal(t, "message", delivery.Event())
	require.Equal(t, []string{"alice", "bob"}, delivery.UserIDs())
	require.True(t, delivery.SkipSelf())
	require.True(t, delivery.QueueOffline())

	event, ok := delivery.Payload().(wire.ChatMessageEvent)
	require.True(t, ok)
	require.Equal(t, "msg-1", event.ID)
	require.Equal(t, "alice", event.SenderID)
	require.Equal(t, testTime.UnixMilli(), event.CreatedAt)
}

func TestSendMessage_RejectsEmptyFields(t *testing.T) {
	deps := newTestDeps(nil, nil, nil)
	auth := NewAuthContext("alice", "conn-1", false)

	for _, payload := range []wire.ChatMessagePayload{
		{RoomID: "", Text: "hello"},
		{RoomID: "room-1", Text: ""},
	} {
		result := SendMessage(context.Background(), deps, auth, payload)
		ack := result.Ack().(wire.MessageAck)
		require.Equal(t, "error", ack.Result)
		require.Empty(t, result.Deliveries())
	}
}

func TestSendMessage_RejectsNonMember(t *testing.T) {
	rooms := fakeRoomQueries{
		isMember: func(context.Context, string, string) (bool, error) { return false, nil },
	}
	deps := newTestDeps(rooms, nil, nil)
	auth := NewAuthContext("mallory", "conn-1", false)

	result := SendMessage(context.Background(), deps, auth, wire.ChatMessagePayload{RoomID: "room-1", Text: "hi"})

	ack := result.Ack().(wire.MessageAck)
	require.Equal(t, "error", ack.Result)
	require.Equal(t, "not a room member", ack.Error)
	require.Empty(t, result.Deliveries())
}

func TestSendMessage_StoreFailure(t *testing.T) {
	rooms := fakeRoomQueries{
		isMember: func(context.Context, string, string) (bool, error) { return true, nil },
	}
	messages := fakeMessageQueries{
		create: func(context.Context, store.CreateMessageParams) (store.Message, error) {
			return store.Message{}, errors.New("disk full")
		},
	}
	deps := newTestDeps(rooms, messages, nil)
	auth := NewAuthContext("alice", "conn-1", false)

	result := SendMessage(context.Background(), deps, auth, wire.ChatMessagePayload{RoomID: "room-1", Text: "hi"})

	ack := result.Ack().(wire.MessageAck)
	require.Equal(t, "error", ack.Result)
	require.Empty(t, result.Deliveries())
}

func TestSendMessage_MemberListFailureStillAcks(t *testing.T) {
	rooms := fakeRoomQueries{
		isMember:     func(context.Context, string, string) (bool, error) { return true, nil },
		getMemberIDs: func(context.Context, string) ([]string, error) { return nil, errors.New("timeout") },
	}
	deps := newTestDeps(rooms, fakeMessageQueries{}, nil)
	auth := NewAuthContext("alice", "conn-1", false)

	result := SendMessage(context.Background(), deps, auth, wire.ChatMessagePayload{RoomID: "room-1", Text: "hi"})

	// The message is persisted; the ack must not report failure just
	// because fan-out could not be resolved.
	ack := result.Ack().(wire.MessageAck)
	require.Equal(t, "success", ack.Result)
	require.Empty(t, result.Deliveries())
}
