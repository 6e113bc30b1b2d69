package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestApply_PartialMergeLeavesUntouchedFields(t *testing.T) {
	doc := Defaults()

	doc.Apply(DocumentPatch{
		Email: &ChannelPatch{Enabled: boolPtr(false)},
	})

	assert.False(t, doc.Email.Enabled)
	// Fields outside the patch keep their stored values.
	assert.True(t, doc.Email.HighPriorityOnly)
	assert.True(t, doc.InApp.Enabled)
	assert.True(t, doc.SMS.Enabled)
}

func TestApply_TypeOverridesMergeKeyByKey(t *testing.T) {
	doc := Defaults()
	doc.InApp.Types = map[string]bool{TypeLead: false}

	doc.Apply(DocumentPatch{
		InApp: &ChannelPatch{Types: map[string]bool{TypeVehicle: false}},
	})

	// Both the old and the new key survive.
	assert.Equal(t, map[string]bool{TypeLead: false, TypeVehicle: false}, doc.InApp.Types)
}

func TestApply_UnknownTypeKeysNormalized(t *testing.T) {
	doc := Defaults()

	doc.Apply(DocumentPatch{
		InApp: &ChannelPatch{Types: map[string]bool{"chat_mention": false}},
	})

	assert.Equal(t, map[string]bool{TypeOther: false}, doc.InApp.Types)
}

func TestApply_SoundVolumeClamped(t *testing.T) {
	doc := Defaults()
	volume := 2.5

	doc.Apply(DocumentPatch{Sound: &SoundPatch{Volume: &volume}})

	assert.InDelta(t, 1.0, doc.Sound.Volume, 0.001)
}

func TestApply_BrowserScalars(t *testing.T) {
	doc := Defaults()

	doc.Apply(DocumentPatch{
		Browser: &BrowserPatch{
			RequireInteraction: boolPtr(true),
			ShowOnlyWhenHidden: boolPtr(false),
		},
	})

	assert.True(t, doc.Browser.RequireInteraction)
	assert.False(t, doc.Browser.ShowOnlyWhenHidden)
	assert.True(t, doc.Browser.Enabled)
}

func TestApply_EmptyPatchIsNoOp(t *testing.T) {
	doc := Defaults()
	before := doc

	doc.Apply(DocumentPatch{})

	assert.Equal(t, before, doc)
}
