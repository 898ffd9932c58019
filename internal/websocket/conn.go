package websocket

// Conn is the transport-facing handle of one live connection. The lifecycle
// manager, membership index and dispatcher only ever see this interface, so
// transports (Socket.IO, plain WebSocket) are interchangeable behind it.
type Conn interface {
	// ID returns the transport-assigned connection id.
	ID() string
	// Emit pushes one event to the connection.
	Emit(event string, args ...any) error
}
