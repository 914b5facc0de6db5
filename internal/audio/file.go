// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"visualizer/internal/analysis"
	applog "visualizer/internal/log"
)

// decoder is the common surface over the format-specific decoders: it
// yields interleaved float32 samples in [-1, 1].
type decoder interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst with up to len(dst) interleaved samples and
	// returns the number written. io.EOF signals end of stream.
	ReadSamples(dst []float32) (int, error)
}

// FileSource plays an audio file through the analyser in real time,
// pacing buffers at the file's own sample rate so the visualizer behaves
// as if the audio were live. When the file ends the analyser is marked
// inactive, which winds down the render loop.
type FileSource struct {
	path     string
	file     *os.File
	dec      decoder
	analyser *analysis.Analyser

	framesPerBuffer int
	sampleBuf       []float32 // Interleaved decoder output.
	monoBuf         []int32   // Downmixed buffer handed to the analyser.

	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewFileSource opens and probes the file. The format is chosen by
// extension: .wav, .mp3 or .ogg. The analyser should be constructed with
// this source's SampleRate.
func NewFileSource(path string, framesPerBuffer int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	var dec decoder
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		dec, err = newWAVDecoder(f)
	case ".mp3":
		dec, err = newMP3Decoder(f)
	case ".ogg":
		dec, err = newOggDecoder(f)
	default:
		err = fmt.Errorf("unsupported audio file format: '%s'", ext)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	applog.Infof("FileSource: Opened %s (%d Hz, %d channels)",
		filepath.Base(path), dec.SampleRate(), dec.Channels())

	return &FileSource{
		path:            path,
		file:            f,
		dec:             dec,
		framesPerBuffer: framesPerBuffer,
		sampleBuf:       make([]float32, framesPerBuffer*dec.Channels()),
		monoBuf:         make([]int32, framesPerBuffer),
	}, nil
}

// SampleRate returns the file's native sample rate in Hz.
func (fs *FileSource) SampleRate() float64 {
	return float64(fs.dec.SampleRate())
}

// Attach sets the analyser the feeder goroutine pushes samples into.
// Must be called before Start.
func (fs *FileSource) Attach(analyser *analysis.Analyser) {
	fs.analyser = analyser
}

// Start launches the feeder goroutine. Buffers are delivered on a ticker
// matching their real-time duration.
func (fs *FileSource) Start() error {
	fs.mu.Lock()
	if fs.running {
		fs.mu.Unlock()
		applog.Warnf("FileSource: Start called but already running.")
		return nil
	}
	if fs.analyser == nil {
		fs.mu.Unlock()
		return fmt.Errorf("FileSource: no analyser attached")
	}
	fs.running = true
	fs.doneChan = make(chan struct{})
	fs.stopOnce = sync.Once{}
	doneChan := fs.doneChan
	fs.mu.Unlock()

	interval := time.Duration(float64(fs.framesPerBuffer) / fs.SampleRate() * float64(time.Second))
	fs.analyser.SetActive(true)

	fs.wg.Add(1)
	go func() {
		defer fs.wg.Done()
		defer fs.analyser.SetActive(false)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		applog.Infof("FileSource: Playback started (buffer interval: %s)", interval)
		for {
			select {
			case <-ticker.C:
				if !fs.feedBuffer() {
					applog.Infof("FileSource: End of file reached.")
					return
				}
			case <-doneChan:
				return
			}
		}
	}()
	return nil
}

// Stop terminates playback and waits for the feeder goroutine. Idempotent.
func (fs *FileSource) Stop() error {
	fs.mu.Lock()
	if !fs.running {
		fs.mu.Unlock()
		return nil
	}
	fs.stopOnce.Do(func() {
		close(fs.doneChan)
		fs.running = false
	})
	fs.mu.Unlock()

	fs.wg.Wait()
	applog.Infof("FileSource: Playback stopped.")
	return nil
}

// Close stops playback and releases the file handle.
func (fs *FileSource) Close() error {
	if err := fs.Stop(); err != nil {
		return err
	}
	return fs.file.Close()
}

// feedBuffer decodes one buffer, downmixes it to mono int32 and pushes it
// through the analyser. Returns false at end of stream.
func (fs *FileSource) feedBuffer() bool {
	n, err := fs.dec.ReadSamples(fs.sampleBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			applog.Errorf("FileSource: Decode error: %v", err)
		}
		return false
	}

	channels := fs.dec.Channels()
	frames := n / channels
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += fs.sampleBuf[i*channels+ch]
		}
		fs.monoBuf[i] = floatToInt32(sum / float32(channels))
	}
	// Zero the tail on a short final read so stale samples do not linger.
	for i := frames; i < len(fs.monoBuf); i++ {
		fs.monoBuf[i] = 0
	}

	fs.analyser.Process(fs.monoBuf)
	return err != io.EOF
}

// floatToInt32 converts a [-1, 1] sample to full-scale int32.
func floatToInt32(v float32) int32 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int32(float64(v) * float64(math.MaxInt32))
}

// --- WAV ---

type wavDecoder struct {
	dec        *wav.Decoder
	sampleRate int
	channels   int
	scale      float32
	intBuf     *goaudio.IntBuffer
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}

	return &wavDecoder{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		scale:      1.0 / float32(int64(1)<<(bitDepth-1)),
		intBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: int(dec.NumChans),
				SampleRate:  int(dec.SampleRate),
			},
		},
	}, nil
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Channels() int   { return d.channels }

func (d *wavDecoder) ReadSamples(dst []float32) (int, error) {
	if cap(d.intBuf.Data) < len(dst) {
		d.intBuf.Data = make([]int, len(dst))
	}
	d.intBuf.Data = d.intBuf.Data[:len(dst)]

	n, err := d.dec.PCMBuffer(d.intBuf)
	if n == 0 && err == nil {
		err = io.EOF
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(d.intBuf.Data[i]) * d.scale
	}
	return n, err
}

// --- MP3 ---

type mp3Decoder struct {
	dec *mp3.Decoder
	buf []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("invalid MP3 file: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }

// go-mp3 always outputs 16-bit stereo.
func (d *mp3Decoder) Channels() int { return 2 }

func (d *mp3Decoder) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if cap(d.buf) < bytesNeeded {
		d.buf = make([]byte, bytesNeeded)
	}
	d.buf = d.buf[:bytesNeeded]

	n, err := io.ReadFull(d.dec, d.buf)
	if n == 0 {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(uint16(d.buf[2*i]) | uint16(d.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768.0
	}
	return samples, err
}

// --- Ogg Vorbis ---

type oggDecoder struct {
	dec *oggvorbis.Reader
}

func newOggDecoder(f *os.File) (*oggDecoder, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("invalid Ogg Vorbis file: %w", err)
	}
	return &oggDecoder{dec: dec}, nil
}

func (d *oggDecoder) SampleRate() int { return d.dec.SampleRate() }
func (d *oggDecoder) Channels() int   { return d.dec.Channels() }

func (d *oggDecoder) ReadSamples(dst []float32) (int, error) {
	return d.dec.Read(dst)
}
