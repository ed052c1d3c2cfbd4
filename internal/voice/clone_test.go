// SPDX-License-Identifier: MIT
package voice

import (
	"math"
	"testing"

	"voiceforge/internal/dsp"
)

func newTestCloner(t *testing.T) *Cloner {
	t.Helper()
	return NewCloner(testDSPConfig(), newTestExtractor(t))
}

func TestCloneZeroSimilarityIsNoTransfer(t *testing.T) {
	c := newTestCloner(t)
	reference := toneBuffer(1, 200)
	target := toneBuffer(1, 120)

	out, _ := c.Clone(reference, target, 0.0, nil)

	// With the blend collapsed, energy and spectral shape stay put.
	if math.Abs(dsp.RMS(out.Samples)-dsp.RMS(target.Samples)) > 1e-6 {
		t.Errorf("rms moved at similarity 0: %f vs %f",
			dsp.RMS(out.Samples), dsp.RMS(target.Samples))
	}
	e := newTestExtractor(t)
	before := e.Extract(target)
	after := e.Extract(out)
	if math.Abs(before.SpectralCentroid-after.SpectralCentroid) > 20 {
		t.Errorf("centroid moved at similarity 0: %f vs %f",
			before.SpectralCentroid, after.SpectralCentroid)
	}
}

func TestCloneSelfMatchesEnergy(t *testing.T) {
	c := newTestCloner(t)
	reference := toneBuffer(2, 150)

	out, profile := c.Clone(reference, reference, 1.0, nil)

	refRMS := dsp.RMS(reference.Samples)
	if got := dsp.RMS(out.Samples); math.Abs(got-refRMS) > refRMS*0.05 {
		t.Errorf("self-clone rms = %f, reference rms = %f", got, refRMS)
	}
	if profile.F0Mean < 140 || profile.F0Mean > 160 {
		t.Errorf("returned profile f0 = %.1f, expected ~150", profile.F0Mean)
	}
}

func TestCloneTransfersPitch(t *testing.T) {
	cfg := testDSPConfig()
	c := newTestCloner(t)
	reference := toneBuffer(2, 200)
	target := toneBuffer(2, 120)

	out, profile := c.Clone(reference, target, 1.0, nil)

	if profile.F0Mean < 190 || profile.F0Mean > 210 {
		t.Fatalf("reference profile f0 = %.1f, expected ~200", profile.F0Mean)
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
		t.Fatal("no voiced frames in cloned output")
	}
	mean := sum / float64(voiced)
	// Full-similarity transfer should pull 120 Hz most of the way to 200.
	if mean < 160 {
		t.Errorf("cloned f0 = %.1f Hz, expected pulled toward 200", mean)
	}
}

func TestCloneDeterministic(t *testing.T) {
	c := newTestCloner(t)
	reference := toneBuffer(1, 200)
	target := toneBuffer(1, 120)

	a, _ := c.Clone(reference, target, 0.8, nil)
	b, _ := c.Clone(reference, target, 0.8, nil)
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs between identical clones", i)
		}
	}
}

func TestCloneSilentReferenceStaysFinite(t *testing.T) {
	c := newTestCloner(t)
	out, profile := c.Clone(silenceBuffer(1), toneBuffer(1, 150), 1.0, nil)

	assertFinite(t, profile)
	for i, s := range out.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			t.Fatalf("sample %d is not finite", i)
		}
	}
}
