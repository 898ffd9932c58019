package websocket

import (
	"context"
	"errors"

	"github.com/parley-chat/server/internal/websocket/handlers"
	"github.com/parley-chat/server/pkg/logger"
	"github.com/parley-chat/server/pkg/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

func (s *SocketIOServer) registerClientHandlers(client *socket.Socket, sess *Session) {
	// Re-authentication over the live connection. Public: an expired or
	// anonymous session must be able to present a fresh token without
	// reconnecting.
	client.On("authenticate", func(data ...any) {
		raw, ack := getFirstAnyWithAck(data)

		var payload wire.SocketAuthPayload
		if err := decodeAny(raw, &payload); err != nil || payload.Token == "" {
			if ack != nil {
				ack(wire.AuthResultPayload{Success: false, Error: "Missing authentication token"})
			}
			return
		}

		if err := s.lifecycle.Authenticate(context.Background(), sess, payload.Token); err != nil {
			logger.Warnf("Re-authentication failed (socket %s): %v", sess.ID(), err)
			if ack != nil {
				ack(wire.AuthResultPayload{Success: false, Error: "Invalid authentication token"})
			}
			return
		}

		result := wire.AuthResultPayload{Success: true, UserID: sess.UserID()}
		if expiresAt := sess.ExpiresAt(); expiresAt != nil {
			result.ExpiresAt = expiresAt.UnixMilli()
		}
		if ack != nil {
			ack(result)
		}
	})

	onGuardedEvent[wire.ChatMessagePayload](s, client, sess, "message", handlers.SendMessage)
	onGuardedEvent[wire.MarkSeenPayload](s, client, sess, "mark-seen", handlers.MarkSeen)

	client.On("disconnect", func(data ...any) {
		reason := ""
		if len(data) > 0 {
			reason, _ = data[0].(string)
		}
		logger.Infof("Client disconnected: socket %s, user %q, reason: %s",
			sess.ID(), sess.UserID(), reason)
		s.lifecycle.Disconnect(context.Background(), sess)
	})
}

// onGuardedEvent registers a non-public typed event: guard, decode, handler,
// ack, then fan-out of the handler's delivery instructions.
func onGuardedEvent[Req any](
	s *SocketIOServer,
	client *socket.Socket,
	sess *Session,
	event string,
	handler func(context.Context, handlers.Deps, handlers.AuthContext, Req) handlers.EventResult,
) {
	client.On(event, func(data ...any) {
		ctx := context.Background()
		raw, ack := getFirstAnyWithAck(data)

		if err := s.lifecycle.Guard(ctx, sess, event, false); err != nil {
			s.rejectAccess(sess, event, err, ack)
			return
		}

		var req Req
		if err := decodeAny(raw, &req); err != nil {
			logger.Warnf("Event %s decode error (socket %s): %v", event, sess.ID(), err)
			if ack != nil {
				ack(map[string]string{"result": "error", "error": "invalid payload"})
			}
			return
		}

		authCtx := handlers.NewAuthContext(sess.UserID(), sess.ID(), sess.Silent())
		result := handler(ctx, s.deps, authCtx, req)

		if ack != nil && result.Ack() != nil {
			ack(result.Ack())
		}
		s.applyDeliveries(ctx, sess, result)
	})
}

// rejectAccess reports an access denial on the triggering operation only.
// The connection stays open.
func (s *SocketIOServer) rejectAccess(sess *Session, event string, err error, ack func(...any)) {
	reason := "unauthenticated"
	if errors.Is(err, ErrUnauthorized) {
		reason = "unauthorized"
	}
	logger.Debugf("Access denied: event=%s socket=%s reason=%s", event, sess.ID(), reason)

	payload := wire.AccessErrorPayload{Event: event, Error: reason}
	if ack != nil {
		ack(payload)
		return
	}
	s.dispatcher.SendToCaller(sess.Conn(), "access-error", payload)
}

// applyDeliveries resolves a handler's delivery instructions through the
// dispatcher and queues offline fallbacks where requested.
func (s *SocketIOServer) applyDeliveries(ctx context.Context, sess *Session, result handlers.EventResult) {
	for _, delivery := range result.Deliveries() {
		var receipts []Receipt
		if delivery.SkipSelf() {
			receipts = s.dispatcher.SendToUsersFrom(sess.Conn(), delivery.Event(), delivery.Payload(), delivery.UserIDs())
		} else {
			receipts = s.dispatcher.SendToUsers(delivery.Event(), delivery.Payload(), delivery.UserIDs())
		}
		if delivery.QueueOffline() {
			s.offline.QueueMissed(ctx, receipts, delivery.Event(), delivery.Payload())
		}
	}
}
