// SPDX-License-Identifier: MIT
package dsp

import "math"

// Voicing gates for the autocorrelation tracker. Frames quieter than
// voicedRMSFloor or with a normalized peak below voicedCorrThreshold are
// reported as unvoiced (0 Hz).
const (
	voicedRMSFloor      = 1e-4
	voicedCorrThreshold = 0.3
)

// TrackPitch estimates a per-frame fundamental frequency restricted to
// [minHz, maxHz] using normalized autocorrelation. Unvoiced or silent
// frames yield 0; callers are expected to discard those before
// computing statistics.
func TrackPitch(samples []float64, sampleRate float64, frameSize, hopSize int, minHz, maxHz float64) []float64 {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}

	minLag := int(sampleRate / maxHz)
	maxLag := int(sampleRate / minHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= frameSize {
		maxLag = frameSize - 1
	}

	numFrames := 0
	if len(samples) >= frameSize {
		numFrames = (len(samples)-frameSize)/hopSize + 1
	} else {
		numFrames = 1
	}

	f0 := make([]float64, numFrames)
	frame := make([]float64, frameSize)

	for f := range numFrames {
		start := f * hopSize
		for i := range frameSize {
			if start+i < len(samples) {
				frame[i] = samples[start+i]
			} else {
				frame[i] = 0
			}
		}
		f0[f] = estimateFrameF0(frame, sampleRate, minLag, maxLag)
	}
	return f0
}

// estimateFrameF0 returns the F0 of one frame, or 0 when the frame is
// silent or no periodicity clears the voicing threshold.
func estimateFrameF0(frame []float64, sampleRate float64, minLag, maxLag int) float64 {
	var energy float64
	for _, s := range frame {
		energy += s * s
	}
	if math.Sqrt(energy/float64(len(frame))) < voicedRMSFloor {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		corr /= energy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr < voicedCorrThreshold {
		return 0
	}
	return sampleRate / float64(bestLag)
}
