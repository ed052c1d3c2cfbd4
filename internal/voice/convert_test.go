// SPDX-License-Identifier: MIT
package voice

import (
	"math"
	"testing"

	"voiceforge/internal/dsp"
)

func TestConvertUnknownSpeakerFallsBack(t *testing.T) {
	c := NewConverter(testDSPConfig())
	buf := toneBuffer(1, 150)

	// Unknown ids use the identity default preset; output differs from
	// input by at most the final normalize, which a sub-ceiling peak avoids.
	out := c.Convert(buf, "speaker_does_not_exist", 1.0, nil)
	if len(out.Samples) != len(buf.Samples) {
		t.Fatalf("length changed: %d vs %d", len(out.Samples), len(buf.Samples))
	}
	for i := range out.Samples {
		if out.Samples[i] != buf.Samples[i] {
			t.Fatalf("sample %d changed under the identity preset", i)
		}
	}
}

func TestConvertAppliesPreset(t *testing.T) {
	c := NewConverter(testDSPConfig())
	buf := toneBuffer(2, 150)

	out := c.Convert(buf, "speaker_002", 1.0, nil)
	if len(out.Samples) != len(buf.Samples) {
		t.Fatalf("duration changed")
	}
	if peak := dsp.Peak(out.Samples); peak > 0.95+1e-9 {
		t.Errorf("peak = %f, expected <= 0.95", peak)
	}

	// speaker_002 shifts pitch up by 1.12; the output must differ.
	var diff float64
	for i := range out.Samples {
		diff += math.Abs(out.Samples[i] - buf.Samples[i])
	}
	if diff == 0 {
		t.Error("conversion with a non-identity preset left the signal untouched")
	}
}

func TestConvertZeroStrengthIsIdentity(t *testing.T) {
	c := NewConverter(testDSPConfig())
	buf := toneBuffer(1, 150)

	out := c.Convert(buf, "speaker_002", 0.0, nil)
	for i := range out.Samples {
		if out.Samples[i] != buf.Samples[i] {
			t.Fatalf("sample %d changed at strength 0", i)
		}
	}
}

func TestConvertDeterministic(t *testing.T) {
	c := NewConverter(testDSPConfig())
	buf := toneBuffer(1, 150)

	a := c.Convert(buf, "speaker_001", 0.7, nil)
	b := c.Convert(buf, "speaker_001", 0.7, nil)
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs between identical conversions", i)
		}
	}
}

func TestConvertReportsMonotoneProgress(t *testing.T) {
	c := NewConverter(testDSPConfig())
	buf := toneBuffer(1, 150)

	var seen []float64
	c.Convert(buf, "speaker_003", 0.5, func(pct float64, _ string) {
		seen = append(seen, pct)
	})
	if len(seen) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress regressed: %v", seen)
		}
	}
}

func TestLookupPreset(t *testing.T) {
	if p := LookupPreset("nope"); p != LookupPreset(DefaultSpeakerID) {
		t.Error("unknown id did not fall back to the default preset")
	}
	if p := LookupPreset("speaker_002"); p.PitchShiftRatio != 1.12 {
		t.Errorf("speaker_002 pitch ratio = %f", p.PitchShiftRatio)
	}
	if ids := SpeakerIDs(); len(ids) != 5 {
		t.Errorf("speaker roster has %d entries, expected 5", len(ids))
	}
}
