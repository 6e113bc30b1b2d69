// Package client mirrors the server's notification feed for Go consumers:
// CLI dashboards, integration tests and tooling. It maintains the same
// list/unread state a browser tab would, reconciling pushed events with
// authoritative re-fetches on reconnect.
package client

import (
	"sort"
	"sync"

	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"
)

// Inbox is the local notification state: an ordered list (newest first) plus
// the derived unread count. Safe for concurrent use.
type Inbox struct {
	mu      sync.Mutex
	records []models.Notification
	index   map[string]int // record id -> position in records
	unread  int

	prefDoc *prefs.Document
	effects EffectSink

	nextListenerID int
	listeners      map[int]func()
}

func NewInbox() *Inbox {
	return &Inbox{
		index:     make(map[string]int),
		listeners: make(map[int]func()),
	}
}

// SetEffectSink installs the presentation-layer side effect target. A nil
// sink disables side effects.
func (in *Inbox) SetEffectSink(sink EffectSink) {
	in.mu.Lock()
	in.effects = sink
	in.mu.Unlock()
}

// SetPreferences replaces the cached preference document used for side
// effect evaluation.
func (in *Inbox) SetPreferences(doc *prefs.Document) {
	in.mu.Lock()
	in.prefDoc = doc
	in.mu.Unlock()
	in.notify()
}

// Subscribe registers a change callback and returns its unsubscribe
// function. The callback fires after every state mutation.
func (in *Inbox) Subscribe(fn func()) func() {
	in.mu.Lock()
	id := in.nextListenerID
	in.nextListenerID++
	in.listeners[id] = fn
	in.mu.Unlock()

	return func() {
		in.mu.Lock()
		delete(in.listeners, id)
		in.mu.Unlock()
	}
}

// ApplyNew inserts a pushed record. Redelivery of an id already present is
// dropped, so neither the list nor the unread count double up, and side
// effects fire at most once per record.
func (in *Inbox) ApplyNew(n models.Notification) {
	in.mu.Lock()
	if _, exists := in.index[n.ID]; exists {
		in.mu.Unlock()
		return
	}

	in.records = append([]models.Notification{n}, in.records...)
	in.reindexLocked()
	if !n.IsRead {
		in.unread++
	}
	sink := in.effects
	doc := in.prefDoc
	in.mu.Unlock()

	in.notify()
	if sink != nil && !n.IsRead {
		runEffects(sink, &n, doc)
	}
}

// ApplyRead handles a read control event. Unknown ids are ignored; the
// record may simply not be loaded locally. A record already read is also a
// no-op so a local action and its echo cannot double-decrement.
func (in *Inbox) ApplyRead(id string) {
	in.mu.Lock()
	pos, ok := in.index[id]
	if !ok || in.records[pos].IsRead {
		in.mu.Unlock()
		return
	}
	in.records[pos].IsRead = true
	if in.unread > 0 {
		in.unread--
	}
	in.mu.Unlock()
	in.notify()
}

// ApplyMarkAllRead flags every loaded record read and zeroes the count.
func (in *Inbox) ApplyMarkAllRead() {
	in.mu.Lock()
	for i := range in.records {
		in.records[i].IsRead = true
	}
	in.unread = 0
	in.mu.Unlock()
	in.notify()
}

// Resync replaces local state with the authoritative server snapshot. Used
// after reconnect; buffered events from the gap are lost, not replayed, so
// no side effects fire here.
func (in *Inbox) Resync(records []models.Notification, unread int64) {
	sorted := make([]models.Notification, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	in.mu.Lock()
	in.records = sorted
	in.reindexLocked()
	in.unread = int(unread)
	if in.unread < 0 {
		in.unread = 0
	}
	in.mu.Unlock()
	in.notify()
}

// Records returns a copy of the current list, newest first.
func (in *Inbox) Records() []models.Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]models.Notification, len(in.records))
	copy(out, in.records)
	return out
}

func (in *Inbox) UnreadCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.unread
}

func (in *Inbox) Preferences() *prefs.Document {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.prefDoc
}

func (in *Inbox) reindexLocked() {
	in.index = make(map[string]int, len(in.records))
	for i := range in.records {
		in.index[in.records[i].ID] = i
	}
}

func (in *Inbox) notify() {
	in.mu.Lock()
	fns := make([]func(), 0, len(in.listeners))
	for _, fn := range in.listeners {
		fns = append(fns, fn)
	}
	in.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
