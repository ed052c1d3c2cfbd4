// SPDX-License-Identifier: MIT
package voice

import (
	"math"

	"voiceforge/internal/audio"
	"voiceforge/internal/config"
)

// Cloner reshapes a target utterance toward the measured acoustics of a
// reference utterance.
type Cloner struct {
	cfg       config.DSPConfig
	extractor *Extractor
}

// NewCloner returns a cloning engine sharing the given extractor.
func NewCloner(cfg config.DSPConfig, extractor *Extractor) *Cloner {
	return &Cloner{cfg: cfg, extractor: extractor}
}

// Clone transfers pitch, spectral shape and energy from the reference
// onto the target, blended by similarity in [0,1]. Returns the reshaped
// buffer and the reference profile for the caller to surface as the
// job's analysis. Transfers below the configured difference thresholds
// are skipped; nudging a descriptor that already matches only adds
// artifacts.
func (c *Cloner) Clone(reference, target audio.Buffer, similarity float64, progress ProgressFunc) (audio.Buffer, Profile) {
	report(progress, 25, "analyzing reference voice")
	refProfile := c.extractor.Extract(reference)

	report(progress, 40, "analyzing target voice")
	targetProfile := c.extractor.Extract(target)

	out := target

	report(progress, 55, "transferring pitch")
	if math.Abs(targetProfile.F0Mean-refProfile.F0Mean) > c.cfg.MinF0DiffHz && targetProfile.F0Mean > 0 {
		ratio := refProfile.F0Mean / targetProfile.F0Mean
		out = PitchShift(out, ratio, similarity, c.cfg.PitchSkipSemitones)
	}

	report(progress, 70, "transferring spectral shape")
	if math.Abs(targetProfile.SpectralCentroid-refProfile.SpectralCentroid) > c.cfg.CentroidDiffHz &&
		targetProfile.SpectralCentroid > 0 {
		ratio := refProfile.SpectralCentroid / targetProfile.SpectralCentroid
		out = BandReweight(out, ratio, similarity, c.cfg.FormantLowHz, c.cfg.FormantHighHz)
	}
	if math.Abs(targetProfile.SpectralRolloff-refProfile.SpectralRolloff) > c.cfg.RolloffDiffHz &&
		targetProfile.SpectralRolloff > 0 {
		ratio := refProfile.SpectralRolloff / targetProfile.SpectralRolloff
		nyquist := float64(c.cfg.SampleRate) / 2
		out = BandReweight(out, ratio, similarity, c.cfg.BrightnessCutoffHz, nyquist)
	}

	report(progress, 85, "matching energy")
	out = EnergyScale(out, refProfile.RMSEnergy, similarity)

	report(progress, 90, "normalizing")
	return Normalize(out, c.cfg.PeakCeiling), refProfile
}
