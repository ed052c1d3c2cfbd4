// SPDX-License-Identifier: MIT
package dsp

import "math"

// SpectralStats summarizes a magnitude spectrogram's energy distribution,
// time-averaged over frames.
type SpectralStats struct {
	Centroid  float64 // Hz
	Rolloff   float64 // Hz
	Bandwidth float64 // Hz
}

// AnalyzeSpectrogram computes time-averaged centroid, rolloff and
// bandwidth over magnitude frames. freqForBin maps a bin index to Hz.
// Frames with no energy contribute zeros, so silent input yields a
// finite (all-zero) result rather than NaN.
func AnalyzeSpectrogram(frames [][]float64, freqForBin func(int) float64, rolloffThreshold float64) SpectralStats {
	if len(frames) == 0 {
		return SpectralStats{}
	}

	var centroidSum, rolloffSum, bandwidthSum float64
	for _, magnitude := range frames {
		var total float64
		for _, m := range magnitude {
			total += m
		}
		if total <= 0 {
			continue
		}

		var centroid float64
		for i, m := range magnitude {
			centroid += freqForBin(i) * m
		}
		centroid /= total
		centroidSum += centroid

		target := rolloffThreshold * total
		var cumulative float64
		for i, m := range magnitude {
			cumulative += m
			if cumulative >= target {
				rolloffSum += freqForBin(i)
				break
			}
		}

		var spread float64
		for i, m := range magnitude {
			d := freqForBin(i) - centroid
			spread += m * d * d
		}
		bandwidthSum += math.Sqrt(spread / total)
	}

	n := float64(len(frames))
	return SpectralStats{
		Centroid:  centroidSum / n,
		Rolloff:   rolloffSum / n,
		Bandwidth: bandwidthSum / n,
	}
}

// RMS returns the root-mean-square amplitude of the signal.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// ZeroCrossingRate returns the average framed zero-crossing rate as a
// fraction in [0, 1].
func ZeroCrossingRate(samples []float64, frameSize, hopSize int) float64 {
	if len(samples) < 2 {
		return 0
	}

	numFrames := 0
	if len(samples) >= frameSize {
		numFrames = (len(samples)-frameSize)/hopSize + 1
	} else {
		numFrames = 1
		frameSize = len(samples)
	}

	var rateSum float64
	for f := range numFrames {
		start := f * hopSize
		end := start + frameSize
		if end > len(samples) {
			end = len(samples)
		}

		crossings := 0
		for i := start + 1; i < end; i++ {
			if (samples[i-1] >= 0) != (samples[i] >= 0) {
				crossings++
			}
		}
		if end-start > 1 {
			rateSum += float64(crossings) / float64(end-start-1)
		}
	}
	return rateSum / float64(numFrames)
}
