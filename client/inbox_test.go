package client

import (
	"sync"
	"testing"
	"time"

	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu       sync.Mutex
	toasts   []string
	sounds   []float64
	osNotify []string
	hidden   bool
}

func (s *fakeSink) Toast(n *models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, n.ID)
}

func (s *fakeSink) PlaySound(n *models.Notification, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounds = append(s.sounds, volume)
}

func (s *fakeSink) OSNotify(n *models.Notification, requireInteraction bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.osNotify = append(s.osNotify, n.ID)
}

func (s *fakeSink) PageHidden() bool { return s.hidden }

func (s *fakeSink) toastCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

func record(id string, createdAt time.Time, read bool) models.Notification {
	return models.Notification{
		BaseModel: models.BaseModel{ID: id, CreatedAt: createdAt},
		Type:      prefs.TypeLead,
		Title:     "t",
		Priority:  "normal",
		IsRead:    read,
	}
}

func TestApplyNew_PrependsAndCounts(t *testing.T) {
	in := NewInbox()
	base := time.Now()

	in.ApplyNew(record("a", base, false))
	in.ApplyNew(record("b", base.Add(time.Minute), false))

	records := in.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID, "newest first")
	assert.Equal(t, 2, in.UnreadCount())
}

func TestApplyNew_DuplicateSuppressed(t *testing.T) {
	in := NewInbox()
	sink := &fakeSink{hidden: true}
	in.SetEffectSink(sink)
	n := record("a", time.Now(), false)

	in.ApplyNew(n)
	in.ApplyNew(n) // redelivery

	assert.Len(t, in.Records(), 1, "exactly one entry")
	assert.Equal(t, 1, in.UnreadCount(), "exactly one increment")
	assert.Equal(t, 1, sink.toastCount(), "side effects at most once per record")
}

func TestApplyNew_AlreadyReadRecordDoesNotCount(t *testing.T) {
	in := NewInbox()

	in.ApplyNew(record("a", time.Now(), true))

	assert.Len(t, in.Records(), 1)
	assert.Zero(t, in.UnreadCount())
}

func TestApplyRead_DecrementsOnce(t *testing.T) {
	in := NewInbox()
	in.ApplyNew(record("a", time.Now(), false))

	in.ApplyRead("a")
	assert.Zero(t, in.UnreadCount())
	assert.True(t, in.Records()[0].IsRead)

	// Echo of a read already applied locally must not double-decrement.
	in.ApplyRead("a")
	assert.Zero(t, in.UnreadCount())
}

func TestApplyRead_UnknownIDIsNoOp(t *testing.T) {
	in := NewInbox()
	in.ApplyNew(record("a", time.Now(), false))

	in.ApplyRead("never-loaded")

	assert.Equal(t, 1, in.UnreadCount())
}

func TestUnreadCount_NeverNegative(t *testing.T) {
	in := NewInbox()

	in.ApplyRead("a")
	in.ApplyMarkAllRead()
	in.ApplyRead("b")

	assert.Zero(t, in.UnreadCount())
}

func TestApplyMarkAllRead(t *testing.T) {
	in := NewInbox()
	base := time.Now()
	in.ApplyNew(record("a", base, false))
	in.ApplyNew(record("b", base.Add(time.Second), false))

	in.ApplyMarkAllRead()

	assert.Zero(t, in.UnreadCount())
	for _, r := range in.Records() {
		assert.True(t, r.IsRead)
	}
}

func TestResync_ReplacesStateWithoutEffects(t *testing.T) {
	in := NewInbox()
	sink := &fakeSink{hidden: true}
	in.SetEffectSink(sink)
	in.ApplyNew(record("stale", time.Now(), false))
	require.Equal(t, 1, sink.toastCount())

	base := time.Now()
	in.Resync([]models.Notification{
		record("x", base, true),
		record("y", base.Add(time.Minute), false),
	}, 1)

	records := in.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "y", records[0].ID, "resync re-sorts newest first")
	assert.Equal(t, 1, in.UnreadCount())
	assert.Equal(t, 1, sink.toastCount(), "resync never replays side effects")
}

func TestEffects_RespectPreferences(t *testing.T) {
	in := NewInbox()
	sink := &fakeSink{hidden: true}
	in.SetEffectSink(sink)

	doc := prefs.Defaults()
	doc.Sound.Enabled = false
	doc.Sound.Volume = 0.4
	in.SetPreferences(&doc)

	in.ApplyNew(record("a", time.Now(), false))

	assert.Equal(t, 1, sink.toastCount())
	assert.Empty(t, sink.sounds, "sound channel disabled")
	assert.Len(t, sink.osNotify, 1, "hidden page shows the OS notification")
}

func TestEffects_BrowserSuppressedOnVisiblePage(t *testing.T) {
	in := NewInbox()
	sink := &fakeSink{hidden: false}
	in.SetEffectSink(sink)
	in.SetPreferences(nil) // defaults: showOnlyWhenHidden

	in.ApplyNew(record("a", time.Now(), false))

	assert.Empty(t, sink.osNotify)
	require.Len(t, sink.sounds, 1)
	assert.InDelta(t, 0.7, sink.sounds[0], 0.001)
}

func TestSubscribe_ReturnsWorkingUnsubscribe(t *testing.T) {
	in := NewInbox()
	var calls int
	unsubscribe := in.Subscribe(func() { calls++ })

	in.ApplyNew(record("a", time.Now(), false))
	assert.Equal(t, 1, calls)

	unsubscribe()
	in.ApplyNew(record("b", time.Now(), false))
	assert.Equal(t, 1, calls, "unsubscribed listener must not fire")
}
