// SPDX-License-Identifier: MIT
package voice

import (
	"voiceforge/internal/audio"
	"voiceforge/internal/config"
)

// ProgressFunc receives coarse milestone updates from an engine.
// Engines call it with a percentage in [0,100] and a step description.
type ProgressFunc func(pct float64, message string)

func report(fn ProgressFunc, pct float64, message string) {
	if fn != nil {
		fn(pct, message)
	}
}

// Converter reshapes utterances toward fixed speaker presets.
type Converter struct {
	cfg config.DSPConfig
}

// NewConverter returns a conversion engine using the given DSP parameters.
func NewConverter(cfg config.DSPConfig) *Converter {
	return &Converter{cfg: cfg}
}

// Convert applies the preset for speakerID to a canonical mono buffer,
// blended by strength in [0,1]. Unknown speaker ids use the default
// preset. The pipeline is linear: pitch, formant band, brightness band,
// normalize.
func (c *Converter) Convert(buf audio.Buffer, speakerID string, strength float64, progress ProgressFunc) audio.Buffer {
	preset := LookupPreset(speakerID)

	report(progress, 30, "shifting pitch")
	out := PitchShift(buf, preset.PitchShiftRatio, strength, c.cfg.PitchSkipSemitones)

	report(progress, 55, "reweighting formant band")
	out = BandReweight(out, preset.FormantShiftRatio, strength, c.cfg.FormantLowHz, c.cfg.FormantHighHz)

	report(progress, 75, "adjusting brightness")
	nyquist := float64(c.cfg.SampleRate) / 2
	out = BandReweight(out, preset.BrightnessFactor, strength, c.cfg.BrightnessCutoffHz, nyquist)

	report(progress, 90, "normalizing")
	return Normalize(out, c.cfg.PeakCeiling)
}
