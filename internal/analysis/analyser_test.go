// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"visualizer/pkg/utils"
)

const (
	testFFTSize    = 2048
	testSampleRate = 44100
)

func TestAnalyserRejectsBadConfig(t *testing.T) {
	if _, err := NewAnalyser(1000, testSampleRate, "hann"); err == nil {
		t.Error("expected error for non-power-of-2 FFT size")
	}
	if _, err := NewAnalyser(testFFTSize, -1, "hann"); err == nil {
		t.Error("expected error for negative sample rate")
	}
	if _, err := NewAnalyser(testFFTSize, testSampleRate, "sawtooth"); err == nil {
		t.Error("expected error for unknown window name")
	}
}

func TestProcessHotPath(t *testing.T) {
	analyser, err := NewAnalyser(testFFTSize, testSampleRate, "hann")
	if err != nil {
		t.Fatalf("NewAnalyser: %v", err)
	}

	inputBuffer := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	// Warm-up call so first-use costs don't count.
	analyser.Process(inputBuffer)
	allocs := testing.AllocsPerRun(100, func() {
		analyser.Process(inputBuffer)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Process hot path, got %.1f", allocs)
	}
}

func TestSnapshotIntoHotPath(t *testing.T) {
	analyser, err := NewAnalyser(testFFTSize, testSampleRate, "hann")
	if err != nil {
		t.Fatalf("NewAnalyser: %v", err)
	}
	analyser.Process(utils.GenerateComplexWave(testFFTSize, testSampleRate))

	freq := make([]byte, analyser.Bins())
	td := make([]byte, analyser.Bins())
	allocs := testing.AllocsPerRun(100, func() {
		_ = analyser.FrequencySnapshotInto(freq)
		_ = analyser.TimeDomainSnapshotInto(td)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in snapshot copies, got %.1f", allocs)
	}
}

func TestSnapshotLengthMismatch(t *testing.T) {
	analyser, err := NewAnalyser(testFFTSize, testSampleRate, "hann")
	if err != nil {
		t.Fatalf("NewAnalyser: %v", err)
	}

	if err := analyser.FrequencySnapshotInto(make([]byte, 10)); err == nil {
		t.Error("expected error for wrong-length frequency destination")
	}
	if err := analyser.TimeDomainSnapshotInto(make([]byte, analyser.Bins()+1)); err == nil {
		t.Error("expected error for wrong-length time destination")
	}
}

func TestSilenceSnapshots(t *testing.T) {
	analyser, err := NewAnalyser(testFFTSize, testSampleRate, "hann")
	if err != nil {
		t.Fatalf("NewAnalyser: %v", err)
	}
	analyser.Process(make([]int32, testFFTSize))

	freq := make([]byte, analyser.Bins())
	td := make([]byte, analyser.Bins())
	if err := analyser.FrequencySnapshotInto(freq); err != nil {
		t.Fatalf("FrequencySnapshotInto: %v", err)
	}
	if err := analyser.TimeDomainSnapshotInto(td); err != nil {
		t.Fatalf("TimeDomainSnapshotInto: %v", err)
	}

	for i, v := range freq {
		if v != 0 {
			t.Fatalf("silence produced non-zero magnitude %d at bin %d", v, i)
		}
	}
	for i, v := range td {
		if v != 128 {
			t.Fatalf("silent time-domain byte %d at index %d, want 128", v, i)
		}
	}
}

func TestSinePeakBin(t *testing.T) {
	analyser, err := NewAnalyser(testFFTSize, testSampleRate, "hann")
	if err != nil {
		t.Fatalf("NewAnalyser: %v", err)
	}

	// Feed the tone several times so the exponential smoothing converges.
	sine := utils.GenerateSineWave(testFFTSize, testSampleRate, 440)
	for i := 0; i < 20; i++ {
		analyser.Process(sine)
	}

	freq := make([]byte, analyser.Bins())
	if err := analyser.FrequencySnapshotInto(freq); err != nil {
		t.Fatalf("FrequencySnapshotInto: %v", err)
	}

	expectedBin := int(math.Round(440 / (testSampleRate / float64(testFFTSize))))
	peak := utils.PeakByteBin(freq, 1, analyser.Bins()-1)
	if peak < expectedBin-2 || peak > expectedBin+2 {
		t.Errorf("sine peak at bin %d, expected near %d", peak, expectedBin)
	}
}

func TestExtractorSnapshot(t *testing.T) {
	e := NewExtractor(8)

	freq := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	td := []byte{8, 7, 6, 5, 4, 3, 2, 1}

	frame, err := e.Snapshot(freq, td)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// Copy-in semantics: mutating the source must not affect the frame.
	freq[0] = 99
	if frame.Frequency[0] != 1 {
		t.Error("frame aliases the source buffer")
	}

	if _, err := e.Snapshot(freq[:4], td); err == nil {
		t.Error("expected ErrMalformedBuffer for short frequency buffer")
	}
}
