// SPDX-License-Identifier: MIT

// Package voice implements the acoustic core: voice profile extraction,
// the deterministic signal transforms, and the conversion and cloning
// engines built on them. All functions are pure; buffers in, buffers out.
package voice

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"voiceforge/internal/audio"
	"voiceforge/internal/config"
	"voiceforge/internal/dsp"
)

// Fallback pitch statistics used when no voiced frames are detected.
// Degenerate input must still produce a fully populated profile.
const (
	fallbackF0Mean   = 150.0
	fallbackF0Std    = 20.0
	fallbackF0Median = 150.0
	fallbackF0Range  = 50.0
)

const numMFCC = 13

// Profile is the fixed-size acoustic descriptor of one utterance.
// Every field is finite for any well-formed input, silence included.
type Profile struct {
	F0Mean            float64   `json:"f0_mean"`
	F0Std             float64   `json:"f0_std"`
	F0Median          float64   `json:"f0_median"`
	F0Range           float64   `json:"f0_range"`
	SpectralCentroid  float64   `json:"spectral_centroid"`
	SpectralRolloff   float64   `json:"spectral_rolloff"`
	SpectralBandwidth float64   `json:"spectral_bandwidth"`
	RMSEnergy         float64   `json:"rms_energy"`
	ZeroCrossingRate  float64   `json:"zero_crossing_rate"`
	MFCC              []float64 `json:"mfcc"`
	DurationSeconds   float64   `json:"duration_seconds"`
}

// Extractor computes voice profiles from mono buffers in the canonical
// working format. The STFT and mel filterbank are built once and reused.
type Extractor struct {
	cfg  config.DSPConfig
	stft *dsp.STFT
	mel  *dsp.MelBank
}

// NewExtractor builds an extractor for the given DSP parameters.
func NewExtractor(cfg config.DSPConfig) (*Extractor, error) {
	stft, err := dsp.NewSTFT(cfg.FrameSize, cfg.HopSize, float64(cfg.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer: %w", err)
	}
	return &Extractor{
		cfg:  cfg,
		stft: stft,
		mel:  dsp.NewMelBank(float64(cfg.SampleRate), stft.NumBins(), 26, numMFCC),
	}, nil
}

// Extract measures the voice profile of a mono buffer. The buffer must
// already be in the canonical format (see audio.Standardize); extraction
// itself never fails for well-formed input.
func (e *Extractor) Extract(buf audio.Buffer) Profile {
	p := Profile{DurationSeconds: buf.Duration()}

	f0 := dsp.TrackPitch(buf.Samples, float64(e.cfg.SampleRate),
		e.cfg.FrameSize, e.cfg.HopSize, e.cfg.PitchMinHz, e.cfg.PitchMaxHz)
	p.F0Mean, p.F0Std, p.F0Median, p.F0Range = pitchStatistics(f0)

	frames := e.stft.Spectrogram(buf.Samples)
	stats := dsp.AnalyzeSpectrogram(frames, e.stft.FreqForBin, e.cfg.RolloffThreshold)
	p.SpectralCentroid = stats.Centroid
	p.SpectralRolloff = stats.Rolloff
	p.SpectralBandwidth = stats.Bandwidth

	p.RMSEnergy = dsp.RMS(buf.Samples)
	p.ZeroCrossingRate = dsp.ZeroCrossingRate(buf.Samples, e.cfg.FrameSize, e.cfg.HopSize)
	p.MFCC = e.mel.MeanCepstrum(frames)

	return p
}

// pitchStatistics summarizes voiced frames, falling back to the fixed
// constants when none are present.
func pitchStatistics(f0 []float64) (mean, std, median, frng float64) {
	voiced := make([]float64, 0, len(f0))
	for _, hz := range f0 {
		if hz > 0 {
			voiced = append(voiced, hz)
		}
	}
	if len(voiced) == 0 {
		return fallbackF0Mean, fallbackF0Std, fallbackF0Median, fallbackF0Range
	}

	mean = stat.Mean(voiced, nil)
	if len(voiced) > 1 {
		std = stat.StdDev(voiced, nil)
	}

	sort.Float64s(voiced)
	median = stat.Quantile(0.5, stat.Empirical, voiced, nil)
	frng = voiced[len(voiced)-1] - voiced[0]
	return mean, std, median, frng
}
