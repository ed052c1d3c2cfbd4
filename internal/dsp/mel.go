// SPDX-License-Identifier: MIT
package dsp

import "math"

// logFloor keeps log mel energies finite on silent frames.
const logFloor = 1e-10

// MelBank converts magnitude frames into mel cepstral coefficients via
// a triangular mel filterbank and a type-II DCT. Filters and DCT basis
// are precomputed at construction.
type MelBank struct {
	numCoeffs int
	filters   [][]float64 // numFilters x numBins
	dct       [][]float64 // numCoeffs x numFilters
}

// NewMelBank builds a filterbank spanning 0 Hz to Nyquist with
// numFilters triangles over numBins spectrum bins.
func NewMelBank(sampleRate float64, numBins, numFilters, numCoeffs int) *MelBank {
	nyquist := sampleRate / 2
	melMax := hzToMel(nyquist)

	// Filter center frequencies, evenly spaced on the mel scale with
	// one extra point on each side for the triangle edges.
	centers := make([]float64, numFilters+2)
	for i := range centers {
		centers[i] = melToHz(melMax * float64(i) / float64(numFilters+1))
	}

	binFreq := func(i int) float64 {
		return float64(i) * nyquist / float64(numBins-1)
	}

	filters := make([][]float64, numFilters)
	for f := range numFilters {
		lo, mid, hi := centers[f], centers[f+1], centers[f+2]
		filter := make([]float64, numBins)
		for b := range numBins {
			freq := binFreq(b)
			switch {
			case freq >= lo && freq <= mid && mid > lo:
				filter[b] = (freq - lo) / (mid - lo)
			case freq > mid && freq <= hi && hi > mid:
				filter[b] = (hi - freq) / (hi - mid)
			}
		}
		filters[f] = filter
	}

	dct := make([][]float64, numCoeffs)
	for k := range numCoeffs {
		row := make([]float64, numFilters)
		for n := range numFilters {
			row[n] = math.Cos(math.Pi * float64(k) * (float64(n) + 0.5) / float64(numFilters))
		}
		dct[k] = row
	}

	return &MelBank{numCoeffs: numCoeffs, filters: filters, dct: dct}
}

// Cepstrum computes the cepstral coefficients of one magnitude frame.
func (m *MelBank) Cepstrum(magnitude []float64) []float64 {
	logEnergies := make([]float64, len(m.filters))
	for f, filter := range m.filters {
		var energy float64
		n := len(magnitude)
		if n > len(filter) {
			n = len(filter)
		}
		for b := range n {
			energy += magnitude[b] * magnitude[b] * filter[b]
		}
		logEnergies[f] = math.Log(math.Max(energy, logFloor))
	}

	coeffs := make([]float64, m.numCoeffs)
	for k, row := range m.dct {
		var sum float64
		for n, e := range logEnergies {
			sum += e * row[n]
		}
		coeffs[k] = sum
	}
	return coeffs
}

// MeanCepstrum averages the cepstra of all frames into one vector.
func (m *MelBank) MeanCepstrum(frames [][]float64) []float64 {
	mean := make([]float64, m.numCoeffs)
	if len(frames) == 0 {
		return mean
	}
	for _, frame := range frames {
		for k, c := range m.Cepstrum(frame) {
			mean[k] += c
		}
	}
	for k := range mean {
		mean[k] /= float64(len(frames))
	}
	return mean
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}
