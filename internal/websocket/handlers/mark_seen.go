package handlers

import (
	"context"

	"github.com/parley-chat/server/pkg/logger"
	"github.com/parley-chat/server/pkg/wire"
)

// MarkSeen clears the caller's queued notifications up to a record id.
// Silent connections use this to keep offline bookkeeping current without
// ever receiving live pushes.
func MarkSeen(ctx context.Context, deps Deps, auth AuthContext, payload wire.MarkSeenPayload) EventResult {
	if payload.UpTo == "" {
		return NewEventResult(wire.SeenAck{Result: "error", Error: "upTo is required"}, nil)
	}

	if err := deps.Notifications().DeleteNotificationsUpTo(ctx, auth.UserID(), payload.UpTo); err != nil {
		logger.Warnf("Failed to clear notifications for user %s: %v", auth.UserID(), err)
		return NewEventResult(wire.SeenAck{Result: "error", Error: "internal error"}, nil)
	}

	return NewEventResult(wire.SeenAck{Result: "success"}, nil)
}
