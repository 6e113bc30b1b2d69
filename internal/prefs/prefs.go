// Package prefs holds the per-user notification preference document and the
// pure delivery-decision logic shared by the server dispatcher and the
// client pipeline.
package prefs

// Channel is an independent delivery path.
type Channel string

const (
	ChannelInApp   Channel = "in_app"
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelBrowser Channel = "browser"
	ChannelSound   Channel = "sound"
	ChannelPush    Channel = "push"
)

// Priority of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification type tags. Unknown tags resolve to TypeOther.
const (
	TypeLead          = "lead"
	TypeAppointment   = "appointment"
	TypeCommunication = "communication"
	TypeVehicle       = "vehicle"
	TypeSystem        = "system"
	TypeOther         = "other"
)

var knownTypes = map[string]bool{
	TypeLead:          true,
	TypeAppointment:   true,
	TypeCommunication: true,
	TypeVehicle:       true,
	TypeSystem:        true,
	TypeOther:         true,
}

// ChannelPref is the per-channel preference variant. An absent key in Types
// means the type is enabled (fail-open), so newly introduced notification
// types are delivered until explicitly muted.
type ChannelPref struct {
	Enabled bool `json:"enabled"`
	// HighPriorityOnly restricts the channel to high-priority notifications.
	// Defaults to true for email and SMS so routine events do not page people.
	HighPriorityOnly bool            `json:"highPriorityOnly,omitempty"`
	Types            map[string]bool `json:"types,omitempty"`
}

// SoundPref adds the playback volume scalar.
type SoundPref struct {
	ChannelPref
	Volume float64 `json:"volume"` // 0.0 - 1.0
}

// BrowserPref adds OS-notification behavior flags.
type BrowserPref struct {
	ChannelPref
	RequireInteraction bool `json:"requireInteraction"`
	ShowOnlyWhenHidden bool `json:"showOnlyWhenHidden"`
}

// Document is one user's full preference set, one sub-document per channel.
type Document struct {
	InApp   ChannelPref `json:"inApp"`
	Email   ChannelPref `json:"email"`
	SMS     ChannelPref `json:"sms"`
	Browser BrowserPref `json:"browser"`
	Sound   SoundPref   `json:"sound"`
	Push    ChannelPref `json:"push"`
}

// Defaults returns the document used when a user has never stored
// preferences. Every channel fails open; email and SMS are biased to
// high-priority traffic only.
func Defaults() Document {
	return Document{
		InApp: ChannelPref{Enabled: true},
		Email: ChannelPref{Enabled: true, HighPriorityOnly: true},
		SMS:   ChannelPref{Enabled: true, HighPriorityOnly: true},
		Browser: BrowserPref{
			ChannelPref:        ChannelPref{Enabled: true},
			ShowOnlyWhenHidden: true,
		},
		Sound: SoundPref{
			ChannelPref: ChannelPref{Enabled: true},
			Volume:      0.7,
		},
		Push: ChannelPref{Enabled: true},
	}
}

// NormalizeType maps unknown or unclassified type tags onto the "other"
// bucket so their preference lookup has a home.
func NormalizeType(t string) string {
	if knownTypes[t] {
		return t
	}
	return TypeOther
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
