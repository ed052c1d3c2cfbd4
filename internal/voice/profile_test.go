// SPDX-License-Identifier: MIT
package voice

import (
	"math"
	"testing"

	"voiceforge/internal/audio"
	"voiceforge/internal/config"
	"voiceforge/pkg/utils"
)

func testDSPConfig() config.DSPConfig {
	return config.NewConfig().DSP
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(testDSPConfig())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func toneBuffer(seconds float64, freq float64) audio.Buffer {
	n := int(seconds * config.DefaultSampleRate)
	return audio.Buffer{
		Samples:    utils.GenerateComplexWave(n, config.DefaultSampleRate, freq),
		SampleRate: config.DefaultSampleRate,
		Channels:   1,
	}
}

func silenceBuffer(seconds float64) audio.Buffer {
	n := int(seconds * config.DefaultSampleRate)
	return audio.Buffer{
		Samples:    utils.GenerateSilence(n),
		SampleRate: config.DefaultSampleRate,
		Channels:   1,
	}
}

func assertFinite(t *testing.T, p Profile) {
	t.Helper()
	fields := map[string]float64{
		"f0_mean":            p.F0Mean,
		"f0_std":             p.F0Std,
		"f0_median":          p.F0Median,
		"f0_range":           p.F0Range,
		"spectral_centroid":  p.SpectralCentroid,
		"spectral_rolloff":   p.SpectralRolloff,
		"spectral_bandwidth": p.SpectralBandwidth,
		"rms_energy":         p.RMSEnergy,
		"zero_crossing_rate": p.ZeroCrossingRate,
		"duration_seconds":   p.DurationSeconds,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %f", name, v)
		}
	}
	if len(p.MFCC) != 13 {
		t.Errorf("mfcc has %d coefficients, expected 13", len(p.MFCC))
	}
	for k, c := range p.MFCC {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Errorf("mfcc[%d] is not finite: %f", k, c)
		}
	}
}

func TestExtractTone(t *testing.T) {
	e := newTestExtractor(t)
	p := e.Extract(toneBuffer(2, 150))

	assertFinite(t, p)
	if p.F0Mean < 140 || p.F0Mean > 160 {
		t.Errorf("f0 mean = %.1f Hz, expected 140-160 for a 150 Hz tone", p.F0Mean)
	}
	if math.Abs(p.DurationSeconds-2.0) > 0.001 {
		t.Errorf("duration = %f, expected 2.0", p.DurationSeconds)
	}
	if p.RMSEnergy <= 0 {
		t.Errorf("rms = %f, expected > 0", p.RMSEnergy)
	}
	if p.SpectralCentroid <= 0 {
		t.Errorf("centroid = %f, expected > 0", p.SpectralCentroid)
	}
}

func TestExtractSilenceFallsBack(t *testing.T) {
	e := newTestExtractor(t)
	p := e.Extract(silenceBuffer(1))

	assertFinite(t, p)
	if p.F0Mean != 150.0 || p.F0Std != 20.0 || p.F0Median != 150.0 || p.F0Range != 50.0 {
		t.Errorf("fallback stats = %.1f/%.1f/%.1f/%.1f, expected 150/20/150/50",
			p.F0Mean, p.F0Std, p.F0Median, p.F0Range)
	}
	if p.RMSEnergy != 0 {
		t.Errorf("silence rms = %f, expected 0", p.RMSEnergy)
	}
}

func TestExtractDistinguishesPitch(t *testing.T) {
	e := newTestExtractor(t)
	low := e.Extract(toneBuffer(1, 120))
	high := e.Extract(toneBuffer(1, 200))

	if low.F0Mean >= high.F0Mean {
		t.Errorf("f0 ordering wrong: low=%.1f high=%.1f", low.F0Mean, high.F0Mean)
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := newTestExtractor(t)
	buf := toneBuffer(1, 150)

	a := e.Extract(buf)
	b := e.Extract(buf)
	if a.F0Mean != b.F0Mean || a.SpectralCentroid != b.SpectralCentroid || a.RMSEnergy != b.RMSEnergy {
		t.Error("extraction of identical input produced different profiles")
	}
	for k := range a.MFCC {
		if a.MFCC[k] != b.MFCC[k] {
			t.Fatalf("mfcc[%d] differs between runs", k)
		}
	}
}
