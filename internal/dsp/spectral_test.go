// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"voiceforge/pkg/utils"
)

func analyzeTone(t *testing.T, freq float64) SpectralStats {
	t.Helper()

	stft, err := NewSTFT(testFrameSize, testHopSize, testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	frames := stft.Spectrogram(utils.GenerateSineWave(22050, testSampleRate, freq))
	return AnalyzeSpectrogram(frames, stft.FreqForBin, 0.85)
}

func TestCentroidTracksToneFrequency(t *testing.T) {
	low := analyzeTone(t, 200)
	high := analyzeTone(t, 2000)

	if low.Centroid >= high.Centroid {
		t.Errorf("centroid ordering wrong: low=%.1f high=%.1f", low.Centroid, high.Centroid)
	}
	// A pure tone's centroid sits near the tone itself; windowing leakage
	// allows a generous tolerance.
	if math.Abs(high.Centroid-2000) > 500 {
		t.Errorf("2 kHz tone centroid = %.1f Hz", high.Centroid)
	}
	if high.Rolloff < 1500 {
		t.Errorf("2 kHz tone rolloff = %.1f Hz", high.Rolloff)
	}
}

func TestAnalyzeSpectrogramSilence(t *testing.T) {
	stft, err := NewSTFT(testFrameSize, testHopSize, testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	frames := stft.Spectrogram(utils.GenerateSilence(22050))
	stats := AnalyzeSpectrogram(frames, stft.FreqForBin, 0.85)

	for name, v := range map[string]float64{
		"centroid":  stats.Centroid,
		"rolloff":   stats.Rolloff,
		"bandwidth": stats.Bandwidth,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite for silence: %f", name, v)
		}
	}
}

func TestRMS(t *testing.T) {
	// A sine of amplitude a has RMS a/sqrt(2).
	signal := utils.GenerateSineWave(22050, testSampleRate, 150)
	want := 0.9 / math.Sqrt2
	if got := RMS(signal); math.Abs(got-want) > 0.01 {
		t.Errorf("RMS = %f, expected ~%f", got, want)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, expected 0", got)
	}
}

func TestZeroCrossingRate(t *testing.T) {
	// A tone at f crosses zero about 2f times per second, i.e. a rate of
	// roughly 2f/sr per sample.
	signal := utils.GenerateSineWave(4*22050, testSampleRate, 441)
	want := 2 * 441 / testSampleRate
	if got := ZeroCrossingRate(signal, testFrameSize, testHopSize); math.Abs(got-want) > want*0.1 {
		t.Errorf("ZCR = %f, expected ~%f", got, want)
	}
}

func TestMelCepstrumShapeAndFiniteness(t *testing.T) {
	stft, err := NewSTFT(testFrameSize, testHopSize, testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	bank := NewMelBank(testSampleRate, stft.NumBins(), 26, 13)

	for _, signal := range [][]float64{
		utils.GenerateComplexWave(22050, testSampleRate, 150),
		utils.GenerateSilence(22050),
	} {
		mean := bank.MeanCepstrum(stft.Spectrogram(signal))
		if len(mean) != 13 {
			t.Fatalf("cepstrum has %d coefficients, expected 13", len(mean))
		}
		for k, c := range mean {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				t.Fatalf("coefficient %d is not finite: %f", k, c)
			}
		}
	}
}

func TestMelCepstrumDiscriminatesTimbre(t *testing.T) {
	stft, err := NewSTFT(testFrameSize, testHopSize, testSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	bank := NewMelBank(testSampleRate, stft.NumBins(), 26, 13)

	pure := bank.MeanCepstrum(stft.Spectrogram(utils.GenerateSineWave(22050, testSampleRate, 150)))
	rich := bank.MeanCepstrum(stft.Spectrogram(utils.GenerateComplexWave(22050, testSampleRate, 150)))

	var dist float64
	for k := range pure {
		d := pure[k] - rich[k]
		dist += d * d
	}
	if math.Sqrt(dist) < 1e-6 {
		t.Error("cepstra of distinct timbres are indistinguishable")
	}
}
