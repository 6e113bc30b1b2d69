package prefs

// Patch types for partial preference updates: only supplied fields change.

type ChannelPatch struct {
	Enabled          *bool           `json:"enabled,omitempty"`
	HighPriorityOnly *bool           `json:"highPriorityOnly,omitempty"`
	Types            map[string]bool `json:"types,omitempty"`
}

type SoundPatch struct {
	ChannelPatch
	Volume *float64 `json:"volume,omitempty"`
}

type BrowserPatch struct {
	ChannelPatch
	RequireInteraction *bool `json:"requireInteraction,omitempty"`
	ShowOnlyWhenHidden *bool `json:"showOnlyWhenHidden,omitempty"`
}

// DocumentPatch mirrors Document with every field optional.
type DocumentPatch struct {
	InApp   *ChannelPatch `json:"inApp,omitempty"`
	Email   *ChannelPatch `json:"email,omitempty"`
	SMS     *ChannelPatch `json:"sms,omitempty"`
	Browser *BrowserPatch `json:"browser,omitempty"`
	Sound   *SoundPatch   `json:"sound,omitempty"`
	Push    *ChannelPatch `json:"push,omitempty"`
}

// Apply merges the patch into the document. Type overrides are merged
// key-by-key; keys absent from the patch keep their stored value.
func (d *Document) Apply(p DocumentPatch) {
	applyChannel(&d.InApp, p.InApp)
	applyChannel(&d.Email, p.Email)
	applyChannel(&d.SMS, p.SMS)
	applyChannel(&d.Push, p.Push)

	if p.Browser != nil {
		applyChannel(&d.Browser.ChannelPref, &p.Browser.ChannelPatch)
		if p.Browser.RequireInteraction != nil {
			d.Browser.RequireInteraction = *p.Browser.RequireInteraction
		}
		if p.Browser.ShowOnlyWhenHidden != nil {
			d.Browser.ShowOnlyWhenHidden = *p.Browser.ShowOnlyWhenHidden
		}
	}

	if p.Sound != nil {
		applyChannel(&d.Sound.ChannelPref, &p.Sound.ChannelPatch)
		if p.Sound.Volume != nil {
			d.Sound.Volume = clampVolume(*p.Sound.Volume)
		}
	}
}

func applyChannel(dst *ChannelPref, p *ChannelPatch) {
	if p == nil {
		return
	}
	if p.Enabled != nil {
		dst.Enabled = *p.Enabled
	}
	if p.HighPriorityOnly != nil {
		dst.HighPriorityOnly = *p.HighPriorityOnly
	}
	if len(p.Types) > 0 {
		if dst.Types == nil {
			dst.Types = make(map[string]bool, len(p.Types))
		}
		for k, v := range p.Types {
			dst.Types[NormalizeType(k)] = v
		}
	}
}
