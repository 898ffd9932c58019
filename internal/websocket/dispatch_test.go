package websocket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_ClassifiesReachability(t *testing.T) {
	g := NewGroups()
	d := NewDispatcher(g)

	// alice has a live primary connection, carol has none. bob is only in
	// his silent group, which the primary fan-out never targets.
	aliceConn := newFakeConn("conn-alice")
	bobConn := newFakeConn("conn-bob")
	g.Join(UserGroup("alice"), aliceConn)
	g.Join(SilentUserGroup("alice"), aliceConn)
	g.Join(SilentUserGroup("bob"), bobConn)

	receipts := d.SendToUsers("ping", map[string]any{"n": 1}, []string{"alice", "bob", "carol"})

	require.Equal(t, []Receipt{
		{UserID: "alice", Reachability: ReachabilityConnected},
		{UserID: "bob", Reachability: ReachabilityUnconnected},
		{UserID: "carol", Reachability: ReachabilityUnconnected},
	}, receipts)

	require.Len(t, aliceConn.events(), 1)
	require.Equal(t, "ping", aliceConn.events()[0].event)
	require.Empty(t, bobConn.events())
}

func TestDispatcher_SenderNeverReceivesEcho(t *testing.T) {
	g := NewGroups()
	d := NewDispatcher(g)

	sender := newFakeConn("conn-sender")
	other := newFakeConn("conn-other")
	g.Join(UserGroup("alice"), sender)
	g.Join(UserGroup("alice"), other)

	receipts := d.SendToUsersFrom(sender, "ping", nil, []string{"alice"})

	require.Equal(t, []Receipt{{UserID: "alice", Reachability: ReachabilityConnected}}, receipts)
	require.Empty(t, sender.events())
	require.Len(t, other.events(), 1)
}

func TestDispatcher_CallerOnlyConnectionIsConnectedSilent(t *testing.T) {
	g := NewGroups()
	d := NewDispatcher(g)

	sender := newFakeConn("conn-sender")
	g.Join(UserGroup("alice"), sender)

	receipts := d.SendToUsersFrom(sender, "ping", nil, []string{"alice"})

	require.Equal(t, []Receipt{{UserID: "alice", Reachability: ReachabilityConnectedSilent}}, receipts)
	require.Empty(t, sender.events())
}

func TestDispatcher_EmptyTargetSetIsNoOp(t *testing.T) {
	g := NewGroups()
	d := NewDispatcher(g)
	conn := newFakeConn("conn-1")
	g.Join(UserGroup("alice"), conn)

	require.Empty(t, d.SendToUsers("ping", nil, nil))
	require.Empty(t, d.SendToUsers("ping", nil, []string{}))
	require.Empty(t, d.SendToUsers("ping", nil, []string{""}))
	require.Empty(t, conn.events())
}

func TestDispatcher_DuplicateTargetsDeliverOnce(t *testing.T) {
	g := NewGroups()
	d := NewDispatcher(g)
	conn := newFakeConn("conn-1")
	g.Join(UserGroup("alice"), conn)

	receipts := d.SendToUsers("ping", nil, []string{"alice", "alice", "alice"})

	require.Len(t, receipts, 1)
	require.Len(t, conn.events(), 1)
}

func TestDispatcher_MultipleConnectionsEachReceive(t *testing.T) {
	g := NewGroups()
	d := NewDispatcher(g)
	first := newFakeConn("conn-1")
	second := newFakeConn("conn-2")
	g.Join(UserGroup("alice"), first)
	g.Join(UserGroup("alice"), second)

	receipts := d.SendToUsers("ping", nil, []string{"alice"})

	require.Equal(t, []Receipt{{UserID: "alice", Reachability: ReachabilityConnected}}, receipts)
	require.Len(t, first.events(), 1)
	require.Len(t, second.events(), 1)
}

func TestDispatcher_SendToCaller(t *testing.T) {
	d := NewDispatcher(NewGroups())
	conn := newFakeConn("conn-1")

	d.SendToCaller(conn, "ack", map[string]any{"result": "success"})
	d.SendToCaller(nil, "ack", nil)

	require.Len(t, conn.events(), 1)
	require.Equal(t, "ack", conn.events()[0].event)
}
