package services

import (
	"testing"

	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestPreferenceGet_LazilyCreatesDefaults(t *testing.T) {
	prefRepo := newFakePreferenceRepo()
	svc := NewPreferenceService(prefRepo, &fakeBroadcaster{})

	doc, err := svc.Get("user-1")
	require.NoError(t, err)
	assert.Equal(t, prefs.Defaults(), *doc)
}

func TestPreferenceUpdate_MergesAndBroadcastsExceptOrigin(t *testing.T) {
	prefRepo := newFakePreferenceRepo()
	hub := &fakeBroadcaster{}
	svc := NewPreferenceService(prefRepo, hub)

	doc, err := svc.Update("user-1", prefs.DocumentPatch{
		Email: &prefs.ChannelPatch{Enabled: boolPtr(false)},
	}, "session-origin")
	require.NoError(t, err)

	assert.False(t, doc.Email.Enabled)
	assert.True(t, doc.InApp.Enabled, "untouched channels keep their values")

	events := hub.all()
	require.Len(t, events, 1)
	assert.Equal(t, ws.UserRoom("user-1"), events[0].Room)
	assert.Equal(t, "session-origin", events[0].ExceptID)
	assert.Equal(t, ws.EventPreferences, events[0].Event.Type)

	// The merge persisted; a fresh read sees it.
	stored, err := svc.Get("user-1")
	require.NoError(t, err)
	assert.False(t, stored.Email.Enabled)
}

func TestPreferenceReset_RestoresDefaults(t *testing.T) {
	prefRepo := newFakePreferenceRepo()
	hub := &fakeBroadcaster{}
	svc := NewPreferenceService(prefRepo, hub)

	_, err := svc.Update("user-1", prefs.DocumentPatch{
		InApp: &prefs.ChannelPatch{Enabled: boolPtr(false)},
	}, "")
	require.NoError(t, err)

	doc, err := svc.Reset("user-1", "")
	require.NoError(t, err)
	assert.Equal(t, prefs.Defaults(), *doc)
	assert.Len(t, hub.all(), 2)
}
