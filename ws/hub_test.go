package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Client) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestBroadcast_FansOutToEverySessionOfUser(t *testing.T) {
	hub := NewHub(16)
	a := NewSession(hub, nil, "user-1", "agent")
	b := NewSession(hub, nil, "user-1", "agent")
	hub.Register(a)
	hub.Register(b)
	drain(a)
	drain(b)

	hub.Broadcast(UserRoom("user-1"), Event{Type: EventNotificationNew})

	require.Len(t, drain(a), 1)
	require.Len(t, drain(b), 1)
}

func TestBroadcast_DoesNotLeakAcrossUsers(t *testing.T) {
	hub := NewHub(16)
	a := NewSession(hub, nil, "user-1", "agent")
	b := NewSession(hub, nil, "user-2", "agent")
	hub.Register(a)
	hub.Register(b)
	drain(a)
	drain(b)

	hub.Broadcast(UserRoom("user-1"), Event{Type: EventNotificationNew})

	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestBroadcastExcept_SkipsOriginSession(t *testing.T) {
	hub := NewHub(16)
	origin := NewSession(hub, nil, "user-1", "agent")
	other := NewSession(hub, nil, "user-1", "agent")
	hub.Register(origin)
	hub.Register(other)
	drain(origin)
	drain(other)

	hub.BroadcastExcept(UserRoom("user-1"), origin.ID, Event{
		Type:    EventNotificationRead,
		Payload: ReadPayload{ID: "rec-1"},
	})

	assert.Empty(t, drain(origin), "origin session must not receive its own echo")
	events := drain(other)
	require.Len(t, events, 1)
	assert.Equal(t, EventNotificationRead, events[0].Type)
}

func TestBroadcastExcept_EmptyOriginReachesEveryone(t *testing.T) {
	hub := NewHub(16)
	a := NewSession(hub, nil, "user-1", "agent")
	b := NewSession(hub, nil, "user-1", "agent")
	hub.Register(a)
	hub.Register(b)
	drain(a)
	drain(b)

	hub.BroadcastExcept(UserRoom("user-1"), "", Event{Type: EventMarkAllRead})

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestPresence_FirstAndLastSession(t *testing.T) {
	hub := NewHub(16)
	watcher := NewSession(hub, nil, "watcher", "manager")
	hub.Register(watcher)
	drain(watcher)

	first := NewSession(hub, nil, "user-1", "agent")
	hub.Register(first)
	events := drain(watcher)
	require.Len(t, events, 1)
	assert.Equal(t, EventUserStatus, events[0].Type)
	status := events[0].Payload.(StatusPayload)
	assert.Equal(t, "user-1", status.UserID)
	assert.True(t, status.Online)

	// A second session of the same user is silent.
	second := NewSession(hub, nil, "user-1", "agent")
	hub.Register(second)
	assert.Empty(t, drain(watcher))

	// Closing one of two sessions is silent; closing the last announces
	// offline.
	hub.Unregister(first)
	assert.Empty(t, drain(watcher))
	assert.True(t, hub.IsOnline("user-1"))

	hub.Unregister(second)
	events = drain(watcher)
	require.Len(t, events, 1)
	status = events[0].Payload.(StatusPayload)
	assert.Equal(t, "user-1", status.UserID)
	assert.False(t, status.Online)
	assert.False(t, hub.IsOnline("user-1"))
}

func TestUnregister_IsIdempotent(t *testing.T) {
	hub := NewHub(16)
	c := NewSession(hub, nil, "user-1", "agent")
	hub.Register(c)

	hub.Unregister(c)
	assert.NotPanics(t, func() { hub.Unregister(c) })
}

func TestRegister_DuplicateSessionIgnored(t *testing.T) {
	hub := NewHub(16)
	c := NewSession(hub, nil, "user-1", "agent")
	hub.Register(c)
	hub.Register(c)

	assert.Len(t, hub.SessionsFor("user-1"), 1)
}

func TestJoinLeave_EntityRooms(t *testing.T) {
	hub := NewHub(16)
	a := NewSession(hub, nil, "user-1", "agent")
	b := NewSession(hub, nil, "user-2", "agent")
	hub.Register(a)
	hub.Register(b)
	drain(a)
	drain(b)

	hub.Join(a, LeadRoom("lead-9"))
	hub.Join(a, LeadRoom("lead-9")) // double join must not double-deliver

	hub.Broadcast(LeadRoom("lead-9"), Event{Type: EventLeadUpdated})
	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))

	hub.Leave(a, LeadRoom("lead-9"))
	hub.Broadcast(LeadRoom("lead-9"), Event{Type: EventLeadUpdated})
	assert.Empty(t, drain(a))
}

func TestSlowSession_DroppedWithoutStallingSiblings(t *testing.T) {
	hub := NewHub(1)
	slow := NewSession(hub, nil, "user-1", "agent")
	healthy := NewSession(hub, nil, "user-1", "agent")
	hub.Register(slow)
	hub.Register(healthy)
	drain(slow)
	drain(healthy)

	// Fill the slow session's buffer, then broadcast: the healthy session
	// still receives while the slow one is scheduled for removal.
	slow.send <- Event{Type: "filler"}
	hub.Broadcast(UserRoom("user-1"), Event{Type: EventNotificationNew})

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.sessions["user-1"]) == 1
	}, time.Second, 10*time.Millisecond, "slow session should be unregistered")

	types := eventTypes(drain(healthy))
	assert.Contains(t, types, EventNotificationNew)
}

func TestMayJoin_Authorization(t *testing.T) {
	hub := NewHub(16)
	agent := NewSession(hub, nil, "user-1", "agent")
	admin := NewSession(hub, nil, "user-2", "admin")

	assert.True(t, agent.mayJoin(LeadRoom("l1")))
	assert.True(t, agent.mayJoin(VehicleRoom("v1")))
	assert.False(t, agent.mayJoin(RoomAdmin))
	assert.False(t, agent.mayJoin(UserRoom("user-2")), "user rooms are hub-assigned only")

	assert.True(t, admin.mayJoin(RoomAdmin))
}
