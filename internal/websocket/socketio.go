package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parley-chat/server/internal/websocket/handlers"
	"github.com/parley-chat/server/pkg/logger"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"
)

// SocketIOServer is the Socket.IO transport adapter for the gateway. All
// session, membership and fan-out logic lives behind it in the lifecycle
// manager and dispatcher; this type only translates Socket.IO callbacks.
type SocketIOServer struct {
	server     *socket.Server
	lifecycle  *Lifecycle
	dispatcher *Dispatcher
	offline    *OfflineQueue
	deps       handlers.Deps
}

// NewSocketIOServer creates a new Socket.IO v3 gateway server.
func NewSocketIOServer(lifecycle *Lifecycle, dispatcher *Dispatcher, offline *OfflineQueue, deps handlers.Deps) *SocketIOServer {
	// Create default server options
	opts := socket.DefaultServerOptions()

	// Configure CORS
	opts.SetCors(&sockettypes.Cors{
		Origin:      "*",
		Credentials: false,
	})

	// SocketIOPingInterval defines how frequently the server pings clients to
	// detect stale/disconnected sockets.
	const SocketIOPingInterval = 5 * time.Second

	// SocketIOPingTimeout defines how long the server waits before considering
	// a socket dead (no pong received).
	const SocketIOPingTimeout = 15 * time.Second

	opts.SetPingTimeout(SocketIOPingTimeout)
	opts.SetPingInterval(SocketIOPingInterval)

	opts.SetPath("/v1/updates")

	server := socket.NewServer(nil, opts)

	s := &SocketIOServer{
		server:     server,
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		offline:    offline,
		deps:       deps,
	}

	// Set up event handlers
	s.server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.handleConnection(client)
	})

	return s
}

// socketConn adapts a Socket.IO socket to the transport-independent Conn
// interface.
type socketConn struct {
	socket *socket.Socket
}

func (c socketConn) ID() string {
	return string(c.socket.Id())
}

func (c socketConn) Emit(event string, args ...any) error {
	return c.socket.Emit(event, args...)
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func getFirstAnyWithAck(data []any) (any, func(...any)) {
	var ack func(...any)
	if len(data) == 0 {
		return nil, nil
	}
	if cb, ok := data[len(data)-1].(func(...any)); ok {
		ack = cb
		data = data[:len(data)-1]
	} else if cb, ok := data[len(data)-1].(socket.Ack); ok {
		ack = func(args ...any) {
			cb(args, nil)
		}
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return nil, ack
	}
	return data[0], ack
}

// firstValue returns the first value for a key in a query or header map.
func firstValue(values map[string][]string, key string) string {
	if vals, ok := values[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// firstAnyValue is the Socket.IO handshake variant of firstValue: the
// handshake's query and header maps are loosely typed, carrying string,
// []string or JSON-decoded []any values.
func firstAnyValue(values map[string]any, key string) string {
	switch val := values[key].(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// isTruthy interprets a boolean-like query flag.
func isTruthy(raw string) bool {
	return strings.EqualFold(raw, "true") || raw == "1"
}

// parseBearer extracts the credential from a "Bearer <token>" header value.
func parseBearer(raw string) string {
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// bearerToken extracts a bearer value from an Authorization header.
func bearerToken(values map[string][]string, key string) string {
	return parseBearer(firstValue(values, key))
}

// bearerAnyToken is bearerToken over a loosely typed handshake header map.
// Header names may arrive lowercased depending on the client stack.
func bearerAnyToken(values map[string]any, key string) string {
	if token := parseBearer(firstAnyValue(values, key)); token != "" {
		return token
	}
	return parseBearer(firstAnyValue(values, strings.ToLower(key)))
}

// HandleSocketIO creates a Gin handler for Socket.IO
func (s *SocketIOServer) HandleSocketIO() gin.HandlerFunc {
	// Get the HTTP handler from Socket.IO server
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "false")

		// Handle preflight
		if c.Request.Method == "OPTIONS" {
			c.Status(http.StatusOK)
			return
		}

		logger.Tracef("Socket.IO request: %s %s", c.Request.Method, c.Request.URL.Path)

		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server
func (s *SocketIOServer) Close() error {
	s.server.Close(nil)
	return nil
}
