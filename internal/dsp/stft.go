// SPDX-License-Identifier: MIT

// Package dsp implements the numeric primitives behind voice analysis
// and transformation: framed magnitude spectrograms, whole-signal
// spectra, autocorrelation pitch tracking, spectral statistics, and mel
// cepstral coefficients. Everything here is deterministic and free of
// hidden state; identical inputs produce bit-identical outputs.
package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"voiceforge/pkg/bitint"
)

// STFT computes framed magnitude spectrograms with a Hann window. The
// FFT object and window coefficients are built once; Spectrogram itself
// allocates only its output.
type STFT struct {
	frameSize  int
	hopSize    int
	sampleRate float64
	fft        *fourier.FFT
	window     []float64
}

// NewSTFT creates a framed analyzer. frameSize must be a power of 2 and
// hopSize must be in (0, frameSize].
func NewSTFT(frameSize, hopSize int, sampleRate float64) (*STFT, error) {
	if !bitint.IsPowerOfTwo(frameSize) {
		return nil, fmt.Errorf("frame size must be a power of 2, got %d", frameSize)
	}
	if hopSize <= 0 || hopSize > frameSize {
		return nil, fmt.Errorf("hop size must be in (0, %d], got %d", frameSize, hopSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	coeffs := make([]float64, frameSize)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	window.Hann(coeffs)

	return &STFT{
		frameSize:  frameSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(frameSize),
		window:     coeffs,
	}, nil
}

// NumBins returns the number of frequency bins per frame (frameSize/2 + 1).
func (s *STFT) NumBins() int {
	return s.frameSize/2 + 1
}

// FreqForBin returns the center frequency in Hz of the given bin.
func (s *STFT) FreqForBin(bin int) float64 {
	if bin < 0 || bin >= s.NumBins() {
		return 0
	}
	return float64(bin) * s.sampleRate / float64(s.frameSize)
}

// Spectrogram computes magnitude frames over the signal. Signals shorter
// than one frame are zero-padded into a single frame so degenerate input
// still yields a populated analysis.
func (s *STFT) Spectrogram(samples []float64) [][]float64 {
	numFrames := 0
	if len(samples) >= s.frameSize {
		numFrames = (len(samples)-s.frameSize)/s.hopSize + 1
	} else {
		numFrames = 1
	}

	input := make([]float64, s.frameSize)
	coeffs := make([]complex128, s.NumBins())
	frames := make([][]float64, numFrames)

	for f := range numFrames {
		start := f * s.hopSize
		for i := range s.frameSize {
			if start+i < len(samples) {
				input[i] = samples[start+i] * s.window[i]
			} else {
				input[i] = 0
			}
		}

		s.fft.Coefficients(coeffs, input)

		magnitude := make([]float64, len(coeffs))
		for i, c := range coeffs {
			magnitude[i] = cmplx.Abs(c)
		}
		frames[f] = magnitude
	}
	return frames
}

// Spectrum computes the one-sided complex spectrum of an entire signal
// of arbitrary length. Used by the band-reweighting transform, which
// operates on the whole utterance rather than frames.
func Spectrum(samples []float64) []complex128 {
	fft := fourier.NewFFT(len(samples))
	return fft.Coefficients(nil, samples)
}

// InverseSpectrum reconstructs the length-n real signal from one-sided
// coefficients produced by Spectrum. gonum's Sequence is unnormalized,
// so the result is scaled by 1/n here.
func InverseSpectrum(coeffs []complex128, n int) []float64 {
	fft := fourier.NewFFT(n)
	seq := fft.Sequence(nil, coeffs)
	scale := 1.0 / float64(n)
	for i := range seq {
		seq[i] *= scale
	}
	return seq
}

// SpectrumFreqForBin returns the frequency in Hz of bin i for a
// whole-signal spectrum over n samples.
func SpectrumFreqForBin(i, n int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(n)
}
