// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visualizer/internal/analysis"
)

// writeTestWAV generates a mono 16-bit sine wave file and returns its path.
func writeTestWAV(t *testing.T, sampleRate, numSamples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, numSamples),
	}
	for i := range buf.Data {
		buf.Data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestFileSourceProbesWAV(t *testing.T) {
	path := writeTestWAV(t, 8000, 4096)

	fs, err := NewFileSource(path, 512)
	require.NoError(t, err)
	defer fs.Close()

	assert.Equal(t, 8000.0, fs.SampleRate())
}

func TestFileSourceRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.flac")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, err := NewFileSource(path, 512)
	assert.Error(t, err)
}

func TestFileSourceRejectsMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.wav"), 512)
	assert.Error(t, err)
}

func TestFileSourceStartRequiresAnalyser(t *testing.T) {
	path := writeTestWAV(t, 8000, 1024)
	fs, err := NewFileSource(path, 512)
	require.NoError(t, err)
	defer fs.Close()

	assert.Error(t, fs.Start())
}

// Playback marks the analyser active while feeding and inactive once the
// file runs out, which is what winds the render loop down.
func TestFileSourcePlaybackLifecycle(t *testing.T) {
	path := writeTestWAV(t, 8000, 2048)

	fs, err := NewFileSource(path, 512)
	require.NoError(t, err)
	defer fs.Close()

	analyser, err := analysis.NewAnalyser(1024, fs.SampleRate(), "hann")
	require.NoError(t, err)
	fs.Attach(analyser)

	require.NoError(t, fs.Start())
	assert.True(t, analyser.Active(), "analyser should be active during playback")

	assert.Eventually(t, func() bool {
		return !analyser.Active()
	}, 5*time.Second, 20*time.Millisecond, "analyser should go inactive at end of file")

	// The tone must have reached the analyser.
	buf := make([]byte, analyser.Bins())
	require.NoError(t, analyser.FrequencySnapshotInto(buf))
	energy := 0
	for _, v := range buf {
		energy += int(v)
	}
	assert.NotZero(t, energy, "decoded samples never reached the analyser")

	require.NoError(t, fs.Stop())
}

func TestFileSourceStopDuringPlayback(t *testing.T) {
	// A long file: stopping mid-stream must not hang.
	path := writeTestWAV(t, 8000, 80000)

	fs, err := NewFileSource(path, 512)
	require.NoError(t, err)
	defer fs.Close()

	analyser, err := analysis.NewAnalyser(1024, fs.SampleRate(), "hann")
	require.NoError(t, err)
	fs.Attach(analyser)

	require.NoError(t, fs.Start())
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, fs.Stop())
	require.NoError(t, fs.Stop(), "stop must be idempotent")
	assert.False(t, analyser.Active())
}

func TestWAVDecoderScalesSamples(t *testing.T) {
	path := writeTestWAV(t, 8000, 256)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec, err := newWAVDecoder(f)
	require.NoError(t, err)
	assert.Equal(t, 8000, dec.SampleRate())
	assert.Equal(t, 1, dec.Channels())

	dst := make([]float32, 256)
	n, err := dec.ReadSamples(dst)
	require.NoError(t, err)
	require.Equal(t, 256, n)

	var peak float32
	for _, v := range dst {
		if v > peak {
			peak = v
		}
	}
	assert.InDelta(t, 0.5, peak, 0.05, "16-bit samples should normalize to [-1, 1]")
}
