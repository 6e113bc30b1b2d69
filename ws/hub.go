package ws

import (
	"sync"
	"time"

	"dealercrm_backend/internal/logger"
)

// Hub is the session registry and room router. It maps each user id to the
// set of live sessions (a user may have many tabs/devices open) and groups
// sessions into named rooms. All mutation goes through Register/Unregister/
// Join/Leave; consumers never touch the underlying maps.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{} // userID -> live sessions
	rooms    map[string]map[*Client]struct{}

	sendBuffer int
	bridge     *RedisBridge // nil in single-instance mode
}

func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Hub{
		sessions:   make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		sendBuffer: sendBuffer,
	}
}

// SetBridge wires the optional cross-instance event bridge. Must be called
// before the first broadcast.
func (h *Hub) SetBridge(b *RedisBridge) {
	h.bridge = b
}

// Register adds the session under its user's bucket and auto-joins the
// user and role rooms. The first session of a user broadcasts an online
// presence event to every connected session.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	bucket, ok := h.sessions[c.UserID]
	if !ok {
		bucket = make(map[*Client]struct{})
		h.sessions[c.UserID] = bucket
	}
	if _, dup := bucket[c]; dup {
		h.mu.Unlock()
		return
	}
	bucket[c] = struct{}{}
	cameOnline := len(bucket) == 1

	h.joinLocked(c, UserRoom(c.UserID))
	h.joinLocked(c, RoleRoom(c.Role))
	h.mu.Unlock()

	logger.Debug("session registered", "session", c.ID, "user", c.UserID)

	if cameOnline {
		h.BroadcastAll(Event{Type: EventUserStatus, Payload: StatusPayload{
			UserID:    c.UserID,
			Online:    true,
			Timestamp: time.Now().UTC(),
		}})
	}
}

// Unregister removes the session from its bucket and from every room it
// joined. The last session of a user broadcasts an offline presence event.
// Unknown sessions are a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	bucket, ok := h.sessions[c.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := bucket[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(bucket, c)

	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}

	wentOffline := len(bucket) == 0
	if wentOffline {
		delete(h.sessions, c.UserID)
	}
	h.mu.Unlock()

	logger.Debug("session unregistered", "session", c.ID, "user", c.UserID)

	if wentOffline {
		h.BroadcastAll(Event{Type: EventUserStatus, Payload: StatusPayload{
			UserID:    c.UserID,
			Online:    false,
			Timestamp: time.Now().UTC(),
		}})
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID]) > 0
}

// SessionsFor returns a snapshot of the user's live sessions.
func (h *Hub) SessionsFor(userID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	bucket := h.sessions[userID]
	out := make([]*Client, 0, len(bucket))
	for c := range bucket {
		out = append(out, c)
	}
	return out
}

// Join adds the session to a room. Idempotent.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(c, room)
}

// Leave removes the session from a room. Idempotent.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// Broadcast delivers the event to every session in the room, best-effort.
func (h *Hub) Broadcast(room string, ev Event) {
	h.publish(envelope{Room: room, Event: ev})
}

// BroadcastExcept delivers to the room, skipping the session that originated
// the action so its already-applied local state is not reprocessed.
func (h *Hub) BroadcastExcept(room, exceptSessionID string, ev Event) {
	h.publish(envelope{Room: room, ExceptID: exceptSessionID, Event: ev})
}

// BroadcastAll delivers to every connected session. Used for presence, which
// is a cross-cutting concern. TODO: scope presence to users sharing a room
// once the dealership network grows past a single store.
func (h *Hub) BroadcastAll(ev Event) {
	h.publish(envelope{Event: ev})
}

func (h *Hub) publish(env envelope) {
	if h.bridge != nil {
		h.bridge.Publish(env)
		return
	}
	h.deliverLocal(env)
}

// deliverLocal fans the event out to local sessions. Delivery per session is
// non-blocking: a session with a full send buffer is dropped and scheduled
// for unregistration so one slow consumer never stalls its siblings.
func (h *Hub) deliverLocal(env envelope) {
	h.mu.RLock()
	var targets []*Client
	if env.Room == "" {
		for _, bucket := range h.sessions {
			for c := range bucket {
				targets = append(targets, c)
			}
		}
	} else {
		for c := range h.rooms[env.Room] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if c.ID == env.ExceptID {
			continue
		}
		h.trySend(c, env.Event)
	}
}

func (h *Hub) trySend(c *Client, ev Event) {
	// The send channel is only closed while the write lock is held, so
	// sending under the read lock can never hit a closed channel.
	h.mu.RLock()
	if c.closed {
		h.mu.RUnlock()
		return
	}
	slow := false
	select {
	case c.send <- ev:
	default:
		slow = true
	}
	h.mu.RUnlock()

	if slow {
		logger.Warn("dropping slow session", "session", c.ID, "user", c.UserID)
		go h.Unregister(c)
	}
}
