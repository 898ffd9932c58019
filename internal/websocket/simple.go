package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/parley-chat/server/internal/websocket/handlers"
	"github.com/parley-chat/server/pkg/logger"
	"github.com/parley-chat/server/pkg/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// SimpleServer is a plain WebSocket transport (not Socket.IO) over the same
// lifecycle manager and dispatcher. It exists for clients without a
// Socket.IO stack and doubles as proof that the gateway core is
// transport-independent.
type SimpleServer struct {
	lifecycle  *Lifecycle
	dispatcher *Dispatcher
	offline    *OfflineQueue
	deps       handlers.Deps
}

// Event is the plain-WebSocket message envelope.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewSimpleServer creates a new plain WebSocket gateway server.
func NewSimpleServer(lifecycle *Lifecycle, dispatcher *Dispatcher, offline *OfflineQueue, deps handlers.Deps) *SimpleServer {
	return &SimpleServer{
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		offline:    offline,
		deps:       deps,
	}
}

// wsConn adapts a gorilla connection to the Conn interface. Gorilla allows
// one concurrent writer, so emissions serialize on the mutex.
type wsConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ID() string {
	return c.id
}

func (c *wsConn) Emit(event string, args ...any) error {
	var data any
	if len(args) > 0 {
		data = args[0]
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Event{Type: event, Data: raw})
}

// HandleWebSocket handles plain WebSocket connections.
func (s *SimpleServer) HandleWebSocket(c *gin.Context) {
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade error: %v", err)
		return
	}
	defer raw.Close()

	conn := &wsConn{id: uuid.NewString(), conn: raw}

	silent := isTruthy(c.Query("silent"))
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.Request.Header, "Authorization")
	}

	sess := s.lifecycle.Connect(conn, silent)
	defer s.lifecycle.Disconnect(context.Background(), sess)

	if token != "" {
		if err := s.lifecycle.Authenticate(context.Background(), sess, token); err != nil {
			logger.Warnf("WebSocket auth rejected (conn %s): %v", conn.id, err)
		}
	}

	logger.Infof("WebSocket client connected: conn %s, user %q, silent %t",
		conn.id, sess.UserID(), silent)

	for {
		var event Event
		if err := raw.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("WebSocket error (conn %s): %v", conn.id, err)
			}
			break
		}
		s.handleEvent(sess, conn, &event)
	}

	logger.Infof("WebSocket client disconnected: conn %s", conn.id)
}

// handleEvent routes one inbound envelope through the same guard and
// handlers the Socket.IO transport uses.
func (s *SimpleServer) handleEvent(sess *Session, conn *wsConn, event *Event) {
	ctx := context.Background()

	switch event.Type {
	case "authenticate":
		var payload wire.SocketAuthPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil || payload.Token == "" {
			s.dispatcher.SendToCaller(conn, "auth-result", wire.AuthResultPayload{Success: false, Error: "Missing authentication token"})
			return
		}
		if err := s.lifecycle.Authenticate(ctx, sess, payload.Token); err != nil {
			s.dispatcher.SendToCaller(conn, "auth-result", wire.AuthResultPayload{Success: false, Error: "Invalid authentication token"})
			return
		}
		result := wire.AuthResultPayload{Success: true, UserID: sess.UserID()}
		if expiresAt := sess.ExpiresAt(); expiresAt != nil {
			result.ExpiresAt = expiresAt.UnixMilli()
		}
		s.dispatcher.SendToCaller(conn, "auth-result", result)

	case "message":
		runGuardedEvent(s, sess, conn, event, handlers.SendMessage)

	case "mark-seen":
		runGuardedEvent(s, sess, conn, event, handlers.MarkSeen)

	default:
		logger.Tracef("Unknown event type %q (conn %s)", event.Type, conn.id)
	}
}

func runGuardedEvent[Req any](
	s *SimpleServer,
	sess *Session,
	conn *wsConn,
	event *Event,
	handler func(context.Context, handlers.Deps, handlers.AuthContext, Req) handlers.EventResult,
) {
	ctx := context.Background()

	if err := s.lifecycle.Guard(ctx, sess, event.Type, false); err != nil {
		reason := "unauthenticated"
		if errors.Is(err, ErrUnauthorized) {
			reason = "unauthorized"
		}
		s.dispatcher.SendToCaller(conn, "access-error", wire.AccessErrorPayload{Event: event.Type, Error: reason})
		return
	}

	var req Req
	if err := json.Unmarshal(event.Data, &req); err != nil {
		s.dispatcher.SendToCaller(conn, "error", map[string]string{"event": event.Type, "error": "invalid payload"})
		return
	}

	authCtx := handlers.NewAuthContext(sess.UserID(), sess.ID(), sess.Silent())
	result := handler(ctx, s.deps, authCtx, req)

	if result.Ack() != nil {
		s.dispatcher.SendToCaller(conn, "ack", result.Ack())
	}
	for _, delivery := range result.Deliveries() {
		var receipts []Receipt
		if delivery.SkipSelf() {
			receipts = s.dispatcher.SendToUsersFrom(conn, delivery.Event(), delivery.Payload(), delivery.UserIDs())
		} else {
			receipts = s.dispatcher.SendToUsers(delivery.Event(), delivery.Payload(), delivery.UserIDs())
		}
		if delivery.QueueOffline() {
			s.offline.QueueMissed(ctx, receipts, delivery.Event(), delivery.Payload())
		}
	}
}
