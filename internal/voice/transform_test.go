// SPDX-License-Identifier: MIT
package voice

import (
	"math"
	"testing"

	"voiceforge/internal/audio"
	"voiceforge/internal/dsp"
)

func TestPitchShiftIdentityBelowThreshold(t *testing.T) {
	buf := toneBuffer(1, 150)

	// 1.005 ratio is ~0.0086 semitones, under the 0.1 skip threshold.
	out := PitchShift(buf, 1.005, 1.0, 0.1)
	if &out.Samples[0] != &buf.Samples[0] {
		t.Error("sub-threshold shift should return the input buffer unchanged")
	}

	// Blend 0 collapses any ratio to identity.
	out = PitchShift(buf, 2.0, 0.0, 0.1)
	if &out.Samples[0] != &buf.Samples[0] {
		t.Error("blend=0 should return the input buffer unchanged")
	}
}

func TestPitchShiftMovesPitch(t *testing.T) {
	cfg := testDSPConfig()
	buf := toneBuffer(2, 150)

	out := PitchShift(buf, 1.5, 1.0, cfg.PitchSkipSemitones)
	if len(out.Samples) != len(buf.Samples) {
		t.Fatalf("duration changed: %d vs %d samples", len(out.Samples), len(buf.Samples))
	}

	f0 := dsp.TrackPitch(out.Samples, float64(cfg.SampleRate),
		cfg.FrameSize, cfg.HopSize, cfg.PitchMinHz, cfg.PitchMaxHz)
	var sum float64
	voiced := 0
	for _, hz := range f0 {
		if hz > 0 {
			sum += hz
			voiced++
		}
	}
	if voiced == 0 {
		t.Fatal("no voiced frames after pitch shift")
	}
	mean := sum / float64(voiced)
	if mean < 200 || mean > 250 {
		t.Errorf("shifted f0 = %.1f Hz, expected ~225", mean)
	}
}

func TestPitchShiftDeterministic(t *testing.T) {
	buf := toneBuffer(1, 150)
	a := PitchShift(buf, 1.3, 0.8, 0.1)
	b := PitchShift(buf, 1.3, 0.8, 0.1)
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs between identical runs", i)
		}
	}
}

func TestBandReweightBoostsBand(t *testing.T) {
	buf := toneBuffer(1, 150)

	// Doubling the 100-200 Hz band should raise energy; the tone's
	// fundamental sits inside it.
	out := BandReweight(buf, 2.0, 1.0, 100, 200)
	if dsp.RMS(out.Samples) <= dsp.RMS(buf.Samples) {
		t.Error("boosting the fundamental's band did not raise RMS")
	}

	// Blend 0 is identity regardless of factor.
	same := BandReweight(buf, 2.0, 0.0, 100, 200)
	if &same.Samples[0] != &buf.Samples[0] {
		t.Error("blend=0 should return the input buffer unchanged")
	}
}

func TestEnergyScale(t *testing.T) {
	buf := toneBuffer(1, 150)
	current := dsp.RMS(buf.Samples)

	out := EnergyScale(buf, current*2, 1.0)
	if got := dsp.RMS(out.Samples); math.Abs(got-current*2) > current*0.01 {
		t.Errorf("rms = %f, expected %f", got, current*2)
	}

	// Silence is passed through rather than divided by zero.
	silent := silenceBuffer(1)
	out = EnergyScale(silent, 0.5, 1.0)
	if dsp.RMS(out.Samples) != 0 {
		t.Error("scaling silence should be a no-op")
	}
}

func TestNormalizeCapsPeak(t *testing.T) {
	loud := audio.Buffer{
		Samples:    []float64{0.2, -1.8, 1.5, 0.4},
		SampleRate: 22050,
		Channels:   1,
	}
	out := Normalize(loud, 0.95)
	if peak := dsp.Peak(out.Samples); peak > 0.95+1e-9 {
		t.Errorf("peak = %f, expected <= 0.95", peak)
	}

	quiet := audio.Buffer{
		Samples:    []float64{0.1, -0.2, 0.3},
		SampleRate: 22050,
		Channels:   1,
	}
	out = Normalize(quiet, 0.95)
	if &out.Samples[0] != &quiet.Samples[0] {
		t.Error("normalize should be a no-op under the ceiling")
	}
}
