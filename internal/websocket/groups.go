package websocket

import (
	"sort"
	"sync"
)

// UserGroup is the primary broadcast group of a user. Only non-silent,
// authenticated connections join it; membership here is what makes a user
// reachable for live-UI delivery.
func UserGroup(userID string) string {
	return "user:" + userID
}

// SilentUserGroup is the presence/bookkeeping group of a user. Every
// authenticated connection joins it, silent or not.
func SilentUserGroup(userID string) string {
	return "user:silent:" + userID
}

// Groups is the in-process group membership index. It is a thin,
// transport-independent contract: idempotent join, no-op leave of a group
// never joined, and a membership snapshot for fan-out.
type Groups struct {
	mu      sync.RWMutex
	members map[string]map[string]Conn // group -> connID -> conn
}

// NewGroups creates an empty membership index.
func NewGroups() *Groups {
	return &Groups{
		members: make(map[string]map[string]Conn),
	}
}

// Join adds a connection to a group. Joining twice has the same observable
// effect as joining once.
func (g *Groups) Join(group string, conn Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conns, ok := g.members[group]
	if !ok {
		conns = make(map[string]Conn)
		g.members[group] = conns
	}
	conns[conn.ID()] = conn
}

// Leave removes a connection from a group. Leaving a group the connection
// never joined is a no-op.
func (g *Groups) Leave(group, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conns, ok := g.members[group]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(g.members, group)
	}
}

// LeaveAll removes a connection from every group it belongs to.
func (g *Groups) LeaveAll(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for group, conns := range g.members {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(g.members, group)
		}
	}
}

// Members returns a snapshot of the group's live connections, ordered by
// connection id for stable iteration.
func (g *Groups) Members(group string) []Conn {
	g.mu.RLock()
	defer g.mu.RUnlock()

	conns := g.members[group]
	if len(conns) == 0 {
		return nil
	}
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Conn, 0, len(ids))
	for _, id := range ids {
		out = append(out, conns[id])
	}
	return out
}

// Count returns the group's current member count.
func (g *Groups) Count(group string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members[group])
}
