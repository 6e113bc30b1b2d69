package client

import (
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"
)

// EffectSink receives presentation-layer side effects for new notifications.
// Implementations render them however the host environment supports: a TUI
// status line, a desktop notification, a terminal bell.
type EffectSink interface {
	Toast(n *models.Notification)
	PlaySound(n *models.Notification, volume float64)
	OSNotify(n *models.Notification, requireInteraction bool)

	// PageHidden reports whether the surface is currently out of the
	// user's view; the browser channel may be restricted to that case.
	PageHidden() bool
}

// runEffects evaluates the preference document and fires the enabled side
// effects for one freshly delivered record. Called at most once per record,
// only on live delivery, never on resync.
func runEffects(sink EffectSink, n *models.Notification, doc *prefs.Document) {
	priority := prefs.Priority(n.Priority)

	if prefs.ShouldDeliver(prefs.ChannelInApp, n.Type, priority, doc) {
		sink.Toast(n)
	}

	if prefs.ShouldDeliver(prefs.ChannelSound, n.Type, priority, doc) {
		sink.PlaySound(n, prefs.EffectiveVolume(doc))
	}

	if prefs.ShouldDeliver(prefs.ChannelBrowser, n.Type, priority, doc) {
		decision := prefs.BrowserBehavior(priority, sink.PageHidden(), doc)
		if decision.Show {
			sink.OSNotify(n, decision.RequireInteraction)
		}
	}
}
