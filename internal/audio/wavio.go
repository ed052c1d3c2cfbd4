// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV parses a WAV payload into a Buffer. Integer PCM depths are
// scaled into [-1, 1]. Malformed or empty payloads are rejected with
// ErrUnsupported / ErrEmpty so they fail before any DSP runs.
func DecodeWAV(payload []byte) (Buffer, error) {
	if len(payload) == 0 {
		return Buffer{}, ErrEmpty
	}

	decoder := wav.NewDecoder(bytes.NewReader(payload))
	if !decoder.IsValidFile() {
		return Buffer{}, ErrUnsupported
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if pcm == nil || len(pcm.Data) == 0 {
		return Buffer{}, ErrEmpty
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = pcm.SourceBitDepth
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(pcm.Data))
	for i, s := range pcm.Data {
		samples[i] = float64(s) / scale
	}

	return Buffer{
		Samples:    samples,
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
	}, nil
}

// EncodeWAV writes a mono buffer as 16-bit PCM WAV. The writer must
// support seeking because the RIFF header is patched on Close.
func EncodeWAV(w io.WriteSeeker, b Buffer) error {
	if len(b.Samples) == 0 {
		return ErrEmpty
	}

	enc := wav.NewEncoder(w, b.SampleRate, 16, 1, 1)

	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		// Clamp before quantizing; normalize should have capped peaks
		// already but encoding must never wrap.
		s = math.Max(-1, math.Min(1, s))
		data[i] = int(math.Round(s * 32767))
	}

	intBuf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: 1,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}
