package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is an in-process Registry with the same atomic-sweep
// contract as the redis backend. It serves tests and single-node
// deployments where no shared store is configured; a scaled deployment
// needs the redis backend for cross-process visibility.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]map[string]int64 // namespace -> connID -> deadline millis
	now     func() time.Time
}

// NewMemoryRegistry creates an in-process registry. A nil clock defaults to
// time.Now.
func NewMemoryRegistry(now func() time.Time) *MemoryRegistry {
	if now == nil {
		now = time.Now
	}
	return &MemoryRegistry{
		entries: make(map[string]map[string]int64),
		now:     now,
	}
}

// Record upserts the connection's eviction deadline.
func (m *MemoryRegistry) Record(_ context.Context, namespace, connID string, expiresAt time.Time, margin time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.entries[namespace]
	if !ok {
		ns = make(map[string]int64)
		m.entries[namespace] = ns
	}
	ns[connID] = deadlineMillis(expiresAt, margin)
	return nil
}

// Remove deletes the connection's entry, if any.
func (m *MemoryRegistry) Remove(_ context.Context, namespace, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.entries[namespace]
	if !ok {
		return nil
	}
	delete(ns, connID)
	if len(ns) == 0 {
		delete(m.entries, namespace)
	}
	return nil
}

// Sweep pops all entries due strictly before now. The lock makes the
// read-and-delete step atomic with respect to concurrent sweepers.
func (m *MemoryRegistry) Sweep(_ context.Context, namespace string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.entries[namespace]
	if !ok {
		return nil, nil
	}

	nowMillis := m.now().UnixMilli()
	var due []string
	for connID, deadline := range ns {
		if deadline < nowMillis {
			due = append(due, connID)
			delete(ns, connID)
		}
	}
	if len(ns) == 0 {
		delete(m.entries, namespace)
	}
	return due, nil
}
