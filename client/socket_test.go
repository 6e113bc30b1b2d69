package client

import (
	"encoding/json"
	"testing"
	"time"

	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(t *testing.T, typ string, payload any) wireEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return wireEvent{Type: typ, Payload: raw}
}

func TestHandle_SessionEventCapturesID(t *testing.T) {
	s := NewSocket("ws://unused", NewInbox(), nil)

	s.handle(event(t, ws.EventSession, ws.SessionPayload{SessionID: "sess-42"}))

	assert.Equal(t, "sess-42", s.SessionID())
}

func TestHandle_RoutesNotificationEvents(t *testing.T) {
	inbox := NewInbox()
	s := NewSocket("ws://unused", inbox, nil)

	s.handle(event(t, ws.EventNotificationNew, record("n1", time.Now(), false)))
	require.Equal(t, 1, inbox.UnreadCount())

	s.handle(event(t, ws.EventNotificationRead, ws.ReadPayload{ID: "n1"}))
	assert.Zero(t, inbox.UnreadCount())

	s.handle(event(t, ws.EventNotificationNew, record("n2", time.Now(), false)))
	s.handle(event(t, ws.EventMarkAllRead, nil))
	assert.Zero(t, inbox.UnreadCount())
}

func TestHandle_PreferencesEventUpdatesCache(t *testing.T) {
	inbox := NewInbox()
	s := NewSocket("ws://unused", inbox, nil)

	doc := prefs.Defaults()
	doc.Sound.Enabled = false
	s.handle(event(t, ws.EventPreferences, doc))

	require.NotNil(t, inbox.Preferences())
	assert.False(t, inbox.Preferences().Sound.Enabled)
}

func TestHandle_MalformedPayloadIgnored(t *testing.T) {
	inbox := NewInbox()
	s := NewSocket("ws://unused", inbox, nil)

	s.handle(wireEvent{Type: ws.EventNotificationNew, Payload: json.RawMessage(`"not an object"`)})
	s.handle(wireEvent{Type: "unknown:event", Payload: json.RawMessage(`{}`)})

	assert.Empty(t, inbox.Records())
}
