package websocket

import (
	"sync"
	"time"
)

// fakeConn records emitted events for assertions.
type fakeConn struct {
	id string

	mu      sync.Mutex
	emitted []emittedEvent
	emitErr error
}

type emittedEvent struct {
	event   string
	payload any
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string {
	return c.id
}

func (c *fakeConn) Emit(event string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var payload any
	if len(args) > 0 {
		payload = args[0]
	}
	c.emitted = append(c.emitted, emittedEvent{event: event, payload: payload})
	return c.emitErr
}

func (c *fakeConn) events() []emittedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]emittedEvent, len(c.emitted))
	copy(out, c.emitted)
	return out
}

type fakeVerifier struct {
	verify func(token string) (map[string]any, error)
}

func (f fakeVerifier) VerifyToken(token string) (map[string]any, error) {
	return f.verify(token)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
