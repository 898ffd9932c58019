package handlers

// DeliveryInstruction describes one fan-out emission produced by a handler
// call. The transport adapter resolves it through the dispatcher; the
// handler itself never touches connections.
type DeliveryInstruction struct {
	event    string
	payload  any
	userIDs  []string
	skipSelf bool
	queue    bool
}

// NewDelivery requests a fan-out of event/payload to the given users.
func NewDelivery(event string, payload any, userIDs []string) DeliveryInstruction {
	return DeliveryInstruction{event: event, payload: payload, userIDs: userIDs}
}

// NewDeliverySkippingSelf requests a fan-out that never echoes back to the
// calling connection.
func NewDeliverySkippingSelf(event string, payload any, userIDs []string) DeliveryInstruction {
	return DeliveryInstruction{event: event, payload: payload, userIDs: userIDs, skipSelf: true}
}

// WithOfflineQueue marks the delivery for the queued-notification fallback:
// targets the dispatcher reports unconnected get a persisted record.
func (i DeliveryInstruction) WithOfflineQueue() DeliveryInstruction {
	i.queue = true
	return i
}

// Event returns the event name to emit.
func (i DeliveryInstruction) Event() string { return i.event }

// Payload returns the event body.
func (i DeliveryInstruction) Payload() any { return i.payload }

// UserIDs returns the logical target users.
func (i DeliveryInstruction) UserIDs() []string { return i.userIDs }

// SkipSelf reports whether the adapter should skip the calling connection.
func (i DeliveryInstruction) SkipSelf() bool { return i.skipSelf }

// QueueOffline reports whether unconnected targets should be queued.
func (i DeliveryInstruction) QueueOffline() bool { return i.queue }

// EventResult is the output of a handler invocation.
type EventResult struct {
	ack        any
	deliveries []DeliveryInstruction
}

// NewEventResult constructs a handler result.
func NewEventResult(ack any, deliveries []DeliveryInstruction) EventResult {
	return EventResult{ack: ack, deliveries: deliveries}
}

// Ack returns the ACK payload to send to the caller.
func (r EventResult) Ack() any { return r.ack }

// Deliveries returns the fan-out emissions requested by the handler.
func (r EventResult) Deliveries() []DeliveryInstruction { return r.deliveries }
