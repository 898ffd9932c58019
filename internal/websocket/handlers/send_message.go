package handlers

import (
	"context"
	"database/sql"

	"github.com/parley-chat/server/internal/store"
	"github.com/parley-chat/server/pkg/logger"
	"github.com/parley-chat/server/pkg/wire"
)

// SendMessage persists a room message and requests fan-out to the room's
// members. The sender never receives an echo; members the dispatcher cannot
// reach live are queued for offline delivery.
func SendMessage(ctx context.Context, deps Deps, auth AuthContext, payload wire.ChatMessagePayload) EventResult {
	if payload.RoomID == "" || payload.Text == "" {
		return NewEventResult(wire.MessageAck{Result: "error", Error: "roomId and text are required"}, nil)
	}

	member, err := deps.Rooms().IsRoomMember(ctx, payload.RoomID, auth.UserID())
	if err != nil {
		logger.Warnf("Failed to check room membership: %v", err)
		return NewEventResult(wire.MessageAck{Result: "error", Error: "internal error"}, nil)
	}
	if !member {
		return NewEventResult(wire.MessageAck{Result: "error", Error: "not a room member"}, nil)
	}

	now := deps.Now()
	var localID sql.NullString
	if payload.LocalID != "" {
		localID = sql.NullString{String: payload.LocalID, Valid: true}
	}

	msg, err := deps.Messages().CreateMessage(ctx, store.CreateMessageParams{
		ID:        deps.NewID(),
		RoomID:    payload.RoomID,
		SenderID:  auth.UserID(),
		Text:      payload.Text,
		LocalID:   localID,
		CreatedAt: now,
	})
	if err != nil {
		logger.Warnf("Failed to persist message: %v", err)
		return NewEventResult(wire.MessageAck{Result: "error", Error: "internal error"}, nil)
	}

	memberIDs, err := deps.Rooms().GetRoomMemberIDs(ctx, payload.RoomID)
	if err != nil {
		logger.Warnf("Failed to list room members: %v", err)
		// The message is stored; acknowledge it even though fan-out is lost.
		return NewEventResult(wire.MessageAck{Result: "success", ID: msg.ID, LocalID: payload.LocalID}, nil)
	}

	event := wire.ChatMessageEvent{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		LocalID:   payload.LocalID,
		CreatedAt: now.UnixMilli(),
	}

	return NewEventResult(
		wire.MessageAck{Result: "success", ID: msg.ID, LocalID: payload.LocalID},
		[]DeliveryInstruction{
			NewDeliverySkippingSelf("message", event, memberIDs).WithOfflineQueue(),
		},
	)
}
