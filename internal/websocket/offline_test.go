package websocket

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/parley-chat/server/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeNotificationQueries struct {
	enqueue func(ctx context.Context, arg store.EnqueueNotificationParams) error
}

func (f fakeNotificationQueries) EnqueueNotification(ctx context.Context, arg store.EnqueueNotificationParams) error {
	return f.enqueue(ctx, arg)
}

func TestOfflineQueue_QueuesOnlyUnconnected(t *testing.T) {
	var queued []store.EnqueueNotificationParams
	queries := fakeNotificationQueries{
		enqueue: func(_ context.Context, arg store.EnqueueNotificationParams) error {
			queued = append(queued, arg)
			return nil
		},
	}

	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	next := 0
	q := NewOfflineQueue(queries, clock.Now, func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	})

	receipts := []Receipt{
		{UserID: "alice", Reachability: ReachabilityConnected},
		{UserID: "bob", Reachability: ReachabilityConnectedSilent},
		{UserID: "carol", Reachability: ReachabilityUnconnected},
		{UserID: "dave", Reachability: ReachabilityUnconnected},
	}

	q.QueueMissed(context.Background(), receipts, "message", map[string]any{"text": "hi"})

	require.Len(t, queued, 2)
	require.Equal(t, "carol", queued[0].UserID)
	require.Equal(t, "dave", queued[1].UserID)
	require.Equal(t, "message", queued[0].Event)
	require.JSONEq(t, `{"text":"hi"}`, queued[0].Payload)
	require.Equal(t, clock.Now(), queued[0].CreatedAt)
	require.Equal(t, "id-1", queued[0].ID)
	require.Equal(t, "id-2", queued[1].ID)
}

func TestOfflineQueue_NoUnconnectedSkipsEncoding(t *testing.T) {
	queries := fakeNotificationQueries{
		enqueue: func(context.Context, store.EnqueueNotificationParams) error {
			t.Fatal("unexpected enqueue")
			return nil
		},
	}
	q := NewOfflineQueue(queries, nil, func() string { return "id" })

	q.QueueMissed(context.Background(), []Receipt{
		{UserID: "alice", Reachability: ReachabilityConnected},
	}, "message", func() {}) // unmarshalable payload never touched
}

func TestOfflineQueue_PersistFailureIsSwallowed(t *testing.T) {
	calls := 0
	queries := fakeNotificationQueries{
		enqueue: func(context.Context, store.EnqueueNotificationParams) error {
			calls++
			return errors.New("disk full")
		},
	}
	q := NewOfflineQueue(queries, nil, func() string { return "id" })

	q.QueueMissed(context.Background(), []Receipt{
		{UserID: "alice", Reachability: ReachabilityUnconnected},
		{UserID: "bob", Reachability: ReachabilityUnconnected},
	}, "message", "payload")

	// Both targets were attempted despite the first failure.
	require.Equal(t, 2, calls)
}
