package websocket

import (
	"context"

	"github.com/parley-chat/server/pkg/logger"
	"github.com/parley-chat/server/pkg/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

func (s *SocketIOServer) handleConnection(client *socket.Socket) {
	conn := socketConn{socket: client}
	socketID := conn.ID()

	logger.Infof("Socket.IO connection attempt (socket ID: %s)", socketID)

	handshake := client.Handshake()

	// The silent flag is a connect-time query parameter, immutable for the
	// connection's lifetime.
	silent := isTruthy(firstAnyValue(handshake.Query, "silent"))

	// An explicit handshake token takes priority over a header bearer.
	var authPayload wire.SocketAuthPayload
	if len(handshake.Auth) > 0 {
		if err := decodeAny(handshake.Auth, &authPayload); err != nil {
			// Unparseable handshake metadata is a protocol error, not a
			// credential failure.
			logger.Warnf("Socket.IO invalid auth data (socket %s): %v", socketID, err)
			client.Emit("error", map[string]string{"message": "Invalid authentication data"})
			client.Disconnect(true)
			return
		}
	}
	token := authPayload.Token
	if token == "" {
		token = bearerAnyToken(handshake.Headers, "Authorization")
	}

	sess := s.lifecycle.Connect(conn, silent)

	// Authentication failure at connect time is not fatal: the connection
	// stays open and anonymous so public events remain reachable.
	if token != "" {
		if err := s.lifecycle.Authenticate(context.Background(), sess, token); err != nil {
			logger.Warnf("Socket.IO handshake auth rejected (socket %s): %v", socketID, err)
		}
	}

	logger.Infof("Socket.IO client ready (socket: %s, user: %q, silent: %t)",
		socketID, sess.UserID(), silent)

	s.registerClientHandlers(client, sess)
}
