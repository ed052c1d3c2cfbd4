// SPDX-License-Identifier: MIT

// Package audio defines the immutable sample buffer value passed through
// the processing pipeline, plus ingest helpers (down-mix, resample) and
// the WAV codec. Buffers are never mutated in place: every operation
// returns a freshly derived buffer.
package audio

import (
	"errors"
	"math"
)

var (
	// ErrEmpty indicates a payload with no decodable samples.
	ErrEmpty = errors.New("audio: empty payload")
	// ErrUnsupported indicates a payload that is not readable WAV audio.
	ErrUnsupported = errors.New("audio: unsupported or corrupt payload")
)

// Buffer is an immutable mono or interleaved multi-channel sample block.
type Buffer struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	return float64(len(b.Samples)/b.Channels) / float64(b.SampleRate)
}

// Clone returns a deep copy. Transforms use this to derive outputs
// without aliasing the input's sample slice.
func (b Buffer) Clone() Buffer {
	samples := make([]float64, len(b.Samples))
	copy(samples, b.Samples)
	return Buffer{Samples: samples, SampleRate: b.SampleRate, Channels: b.Channels}
}

// DownMix reduces an interleaved multi-channel buffer to mono by
// averaging channels. Mono buffers are returned unchanged.
func DownMix(b Buffer) Buffer {
	if b.Channels <= 1 {
		return b
	}

	frames := len(b.Samples) / b.Channels
	mono := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range b.Channels {
			sum += b.Samples[i*b.Channels+ch]
		}
		mono[i] = sum / float64(b.Channels)
	}
	return Buffer{Samples: mono, SampleRate: b.SampleRate, Channels: 1}
}

// Resample converts a mono buffer to targetRate using linear
// interpolation. Buffers already at targetRate are returned unchanged.
func Resample(b Buffer, targetRate int) Buffer {
	if b.SampleRate == targetRate || len(b.Samples) == 0 {
		return b
	}

	ratio := float64(b.SampleRate) / float64(targetRate)
	outLen := int(math.Round(float64(len(b.Samples)) / ratio))
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(b.Samples)-1 {
			out[i] = b.Samples[len(b.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = b.Samples[idx]*(1-frac) + b.Samples[idx+1]*frac
	}
	return Buffer{Samples: out, SampleRate: targetRate, Channels: 1}
}

// Standardize down-mixes and resamples a buffer into the canonical
// working format expected by the analysis and transform stages.
func Standardize(b Buffer, sampleRate int) (Buffer, error) {
	if len(b.Samples) == 0 {
		return Buffer{}, ErrEmpty
	}
	return Resample(DownMix(b), sampleRate), nil
}
