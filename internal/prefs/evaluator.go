package prefs

// ShouldDeliver decides whether a notification of the given type and
// priority is delivered on a channel. Resolution order: channel enabled ->
// priority bias -> per-type override -> fail-open.
//
// A nil doc means the user has never stored preferences and resolves to
// Defaults(); it is never an error.
func ShouldDeliver(ch Channel, notificationType string, priority Priority, doc *Document) bool {
	if doc == nil {
		d := Defaults()
		doc = &d
	}

	pref := doc.channel(ch)
	if pref == nil || !pref.Enabled {
		return false
	}
	if pref.HighPriorityOnly && priority != PriorityHigh {
		return false
	}
	if enabled, ok := pref.Types[NormalizeType(notificationType)]; ok && !enabled {
		return false
	}
	return true
}

// EffectiveVolume returns the sound playback volume, clamped to [0, 1].
func EffectiveVolume(doc *Document) float64 {
	if doc == nil {
		d := Defaults()
		doc = &d
	}
	return clampVolume(doc.Sound.Volume)
}

// BrowserDecision is the presentation outcome for the browser channel.
type BrowserDecision struct {
	Show               bool
	RequireInteraction bool
}

// BrowserBehavior applies the visibility-suppression rule after the caller
// has already passed ShouldDeliver for the browser channel.
//
// With showOnlyWhenHidden set, a visible page suppresses the OS
// notification. High priority bypasses that suppression only when
// requireInteraction is also set; high priority alone does not.
func BrowserBehavior(priority Priority, pageHidden bool, doc *Document) BrowserDecision {
	if doc == nil {
		d := Defaults()
		doc = &d
	}

	b := doc.Browser
	if b.ShowOnlyWhenHidden && !pageHidden {
		if priority == PriorityHigh && b.RequireInteraction {
			return BrowserDecision{Show: true, RequireInteraction: true}
		}
		return BrowserDecision{}
	}
	return BrowserDecision{Show: true, RequireInteraction: b.RequireInteraction}
}

func (d *Document) channel(ch Channel) *ChannelPref {
	switch ch {
	case ChannelInApp:
		return &d.InApp
	case ChannelEmail:
		return &d.Email
	case ChannelSMS:
		return &d.SMS
	case ChannelBrowser:
		return &d.Browser.ChannelPref
	case ChannelSound:
		return &d.Sound.ChannelPref
	case ChannelPush:
		return &d.Push
	default:
		return nil
	}
}
