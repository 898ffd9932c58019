package websocket

import (
	"github.com/parley-chat/server/pkg/logger"
)

// Reachability classifies one fan-out target at dispatch time.
type Reachability string

const (
	// ReachabilityConnected means the user has at least one live primary
	// connection other than the sender.
	ReachabilityConnected Reachability = "connected"
	// ReachabilityConnectedSilent means the user's only live primary
	// connection is the calling one; delivery would only echo.
	ReachabilityConnectedSilent Reachability = "connectedSilent"
	// ReachabilityUnconnected means no live primary connection exists.
	// Callers persist a queued notification for these targets.
	ReachabilityUnconnected Reachability = "unconnected"
)

// Receipt is the per-target outcome of a fan-out call.
type Receipt struct {
	UserID       string
	Reachability Reachability
}

// Dispatcher fans one event out to the primary broadcast groups of a set of
// target users and reports which targets were not reachable. It never
// persists anything; offline fallbacks are the caller's responsibility.
type Dispatcher struct {
	groups *Groups
}

// NewDispatcher creates a dispatcher over a membership index.
func NewDispatcher(groups *Groups) *Dispatcher {
	return &Dispatcher{groups: groups}
}

// SendToUsers delivers the event once to every live primary connection of
// each unique target user and returns one receipt per target. An empty
// target set is a no-op returning no receipts.
func (d *Dispatcher) SendToUsers(event string, payload any, userIDs []string) []Receipt {
	return d.send(nil, event, payload, userIDs)
}

// SendToUsersFrom is the sender-aware variant: the calling connection never
// receives its own event, and a target whose only primary connection is the
// caller classifies as connectedSilent.
func (d *Dispatcher) SendToUsersFrom(sender Conn, event string, payload any, userIDs []string) []Receipt {
	return d.send(sender, event, payload, userIDs)
}

// SendToCaller replies on the originating connection only, bypassing the
// membership index.
func (d *Dispatcher) SendToCaller(caller Conn, event string, payload any) {
	if caller == nil {
		return
	}
	if err := caller.Emit(event, payload); err != nil {
		logger.Warnf("Failed to emit %s to caller %s: %v", event, caller.ID(), err)
	}
}

// send classifies and delivers from one membership snapshot per target.
// A connection may disconnect between the snapshot and the emit; delivery
// is best-effort at-most-once, no stronger.
func (d *Dispatcher) send(sender Conn, event string, payload any, userIDs []string) []Receipt {
	targets := uniqueIDs(userIDs)
	if len(targets) == 0 {
		return []Receipt{}
	}

	senderID := ""
	if sender != nil {
		senderID = sender.ID()
	}

	receipts := make([]Receipt, 0, len(targets))
	for _, userID := range targets {
		members := d.groups.Members(UserGroup(userID))
		if len(members) == 0 {
			receipts = append(receipts, Receipt{UserID: userID, Reachability: ReachabilityUnconnected})
			continue
		}

		delivered := 0
		for _, conn := range members {
			if senderID != "" && conn.ID() == senderID {
				continue
			}
			if err := conn.Emit(event, payload); err != nil {
				logger.Warnf("Failed to emit %s to connection %s: %v", event, conn.ID(), err)
			}
			delivered++
		}

		if delivered == 0 {
			// The caller was the user's only primary connection.
			receipts = append(receipts, Receipt{UserID: userID, Reachability: ReachabilityConnectedSilent})
			continue
		}
		receipts = append(receipts, Receipt{UserID: userID, Reachability: ReachabilityConnected})
	}
	return receipts
}

// uniqueIDs normalizes a target list to a set, preserving first-seen order.
func uniqueIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
