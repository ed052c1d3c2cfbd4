// SPDX-License-Identifier: MIT
package voice

import (
	"math"

	"voiceforge/internal/audio"
	"voiceforge/internal/dsp"
)

// Time-stretch synthesis parameters for the pitch shifter.
const (
	stretchWindow = 1024
	stretchHop    = 256
)

// rmsGuard is the floor below which a buffer counts as silent for
// energy scaling.
const rmsGuard = 1e-8

// PitchShift raises or lowers the perceived pitch by ratio, blended
// toward identity by blend, without changing duration. The ratio is
// converted to semitones; shifts smaller in magnitude than
// skipSemitones are treated as identity, since correcting them audibly
// degrades the signal more than it helps.
func PitchShift(b audio.Buffer, ratio, blend, skipSemitones float64) audio.Buffer {
	if ratio <= 0 || len(b.Samples) == 0 {
		return b
	}

	semitones := 12 * math.Log2(ratio) * blend
	if math.Abs(semitones) < skipSemitones {
		return b
	}
	effective := math.Pow(2, semitones/12)

	// Stretch time by the ratio (pitch preserved), then resample back to
	// the original length (pitch scaled, duration restored).
	stretched := timeStretch(b.Samples, effective)
	out := resampleToLength(stretched, len(b.Samples))
	return audio.Buffer{Samples: out, SampleRate: b.SampleRate, Channels: 1}
}

// timeStretch changes duration by factor while keeping pitch, using
// windowed overlap-add with a fixed synthesis hop. Deterministic: no
// search, no randomness.
func timeStretch(x []float64, factor float64) []float64 {
	outLen := int(math.Round(float64(len(x)) * factor))
	if outLen < 1 {
		outLen = 1
	}
	if len(x) <= stretchWindow {
		// Too short to frame; plain resampling is the best available.
		return resampleToLength(x, outLen)
	}

	window := make([]float64, stretchWindow)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(stretchWindow-1)))
	}

	anaHop := float64(stretchHop) / factor
	out := make([]float64, outLen)
	norm := make([]float64, outLen)

	for frame := 0; ; frame++ {
		anaStart := int(math.Round(float64(frame) * anaHop))
		synStart := frame * stretchHop
		if anaStart+stretchWindow > len(x) || synStart >= outLen {
			break
		}
		for i := range stretchWindow {
			if synStart+i >= outLen {
				break
			}
			out[synStart+i] += x[anaStart+i] * window[i]
			norm[synStart+i] += window[i]
		}
	}

	for i := range out {
		if norm[i] > 1e-9 {
			out[i] /= norm[i]
		}
	}
	return out
}

// resampleToLength linearly resamples x to exactly n samples.
func resampleToLength(x []float64, n int) []float64 {
	out := make([]float64, n)
	if len(x) == 0 || n == 0 {
		return out
	}
	if len(x) == 1 {
		for i := range out {
			out[i] = x[0]
		}
		return out
	}

	step := float64(len(x)-1) / float64(max(n-1, 1))
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(x)-1 {
			out[i] = x[len(x)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = x[idx]*(1-frac) + x[idx+1]*frac
	}
	return out
}

// BandReweight scales every spectral bin inside [lowHz, highHz] by
// factor, blended toward identity. The whole utterance is transformed
// at once; this is deliberate bin reweighting, not formant tracking.
func BandReweight(b audio.Buffer, factor, blend, lowHz, highHz float64) audio.Buffer {
	if len(b.Samples) < 2 {
		return b
	}

	gain := factor*blend + (1 - blend)
	if gain == 1 {
		return b
	}

	coeffs := dsp.Spectrum(b.Samples)
	n := len(b.Samples)
	for i := range coeffs {
		freq := dsp.SpectrumFreqForBin(i, n, float64(b.SampleRate))
		if freq >= lowHz && freq <= highHz {
			coeffs[i] *= complex(gain, 0)
		}
	}

	return audio.Buffer{
		Samples:    dsp.InverseSpectrum(coeffs, n),
		SampleRate: b.SampleRate,
		Channels:   1,
	}
}

// EnergyScale moves the buffer's RMS toward targetRMS, blended toward
// identity. Near-silent buffers are returned unchanged to avoid a
// division blow-up.
func EnergyScale(b audio.Buffer, targetRMS, blend float64) audio.Buffer {
	current := dsp.RMS(b.Samples)
	if current < rmsGuard {
		return b
	}

	gain := (targetRMS/current)*blend + (1 - blend)
	if gain == 1 {
		return b
	}

	out := b.Clone()
	for i := range out.Samples {
		out.Samples[i] *= gain
	}
	return out
}

// Normalize rescales the buffer so its peak does not exceed ceiling.
// Buffers already under the ceiling pass through untouched. Applied as
// the final step of every engine.
func Normalize(b audio.Buffer, ceiling float64) audio.Buffer {
	peak := dsp.Peak(b.Samples)
	if peak <= ceiling || peak == 0 {
		return b
	}

	scale := ceiling / peak
	out := b.Clone()
	for i := range out.Samples {
		out.Samples[i] *= scale
	}
	return out
}
