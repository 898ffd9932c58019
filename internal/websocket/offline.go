package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/parley-chat/server/internal/store"
	"github.com/parley-chat/server/pkg/logger"
)

// NotificationQueries is the subset of store queries the offline queue uses.
type NotificationQueries interface {
	EnqueueNotification(ctx context.Context, arg store.EnqueueNotificationParams) error
}

// OfflineQueue is the caller-side fallback for unreachable fan-out targets.
// The dispatcher only reports reachability; this queue turns unconnected
// receipts into persisted notification records.
type OfflineQueue struct {
	notifications NotificationQueries
	now           func() time.Time
	newID         func() string
}

// NewOfflineQueue creates the fallback queue. A nil clock defaults to
// time.Now.
func NewOfflineQueue(notifications NotificationQueries, now func() time.Time, newID func() string) *OfflineQueue {
	if now == nil {
		now = time.Now
	}
	return &OfflineQueue{notifications: notifications, now: now, newID: newID}
}

// QueueMissed persists one queued notification per unconnected receipt.
// connectedSilent targets had a live connection (the sender's own) and are
// not queued. Persistence failures are logged, not propagated; delivery to
// reachable targets already happened.
func (q *OfflineQueue) QueueMissed(ctx context.Context, receipts []Receipt, event string, payload any) {
	var encoded string
	for _, receipt := range receipts {
		if receipt.Reachability != ReachabilityUnconnected {
			continue
		}
		if encoded == "" {
			raw, err := json.Marshal(payload)
			if err != nil {
				logger.Warnf("Failed to encode %s payload for offline queue: %v", event, err)
				return
			}
			encoded = string(raw)
		}
		err := q.notifications.EnqueueNotification(ctx, store.EnqueueNotificationParams{
			ID:        q.newID(),
			UserID:    receipt.UserID,
			Event:     event,
			Payload:   encoded,
			CreatedAt: q.now(),
		})
		if err != nil {
			logger.Warnf("Failed to queue %s notification for user %s: %v", event, receipt.UserID, err)
		}
	}
}
