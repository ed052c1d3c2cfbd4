// SPDX-License-Identifier: MIT
package voice

import "sort"

// Preset describes a fixed target speaker as multiplicative ratios
// centered on 1.0.
type Preset struct {
	PitchShiftRatio   float64 `json:"pitch_shift_ratio"`
	FormantShiftRatio float64 `json:"formant_shift_ratio"`
	BrightnessFactor  float64 `json:"brightness_factor"`
}

// DefaultSpeakerID backs lookups for speaker ids we do not know.
const DefaultSpeakerID = "default"

// speakerPresets is the static speaker table. Ids follow the original
// speaker roster; "default" is the identity preset.
var speakerPresets = map[string]Preset{
	"speaker_001": {PitchShiftRatio: 0.92, FormantShiftRatio: 1.05, BrightnessFactor: 0.90}, // male A
	"speaker_002": {PitchShiftRatio: 1.12, FormantShiftRatio: 0.95, BrightnessFactor: 1.15}, // female A
	"speaker_003": {PitchShiftRatio: 0.97, FormantShiftRatio: 1.02, BrightnessFactor: 0.95}, // male B
	"speaker_004": {PitchShiftRatio: 1.06, FormantShiftRatio: 0.97, BrightnessFactor: 1.08}, // female B
	DefaultSpeakerID: {PitchShiftRatio: 1.0, FormantShiftRatio: 1.0, BrightnessFactor: 1.0},
}

// LookupPreset returns the preset for speakerID. Unknown ids fall back
// to the default preset rather than erroring; lenient by contract so a
// stale speaker list on the caller's side degrades gracefully instead
// of failing jobs.
func LookupPreset(speakerID string) Preset {
	if p, ok := speakerPresets[speakerID]; ok {
		return p
	}
	return speakerPresets[DefaultSpeakerID]
}

// SpeakerIDs returns the known speaker ids in sorted order.
func SpeakerIDs() []string {
	ids := make([]string, 0, len(speakerPresets))
	for id := range speakerPresets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
