// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// WAVFile is a Factory that records playback into a 16-bit PCM WAV file.
// A file holds a single stream, so only one device can be opened; its
// header is completed when that device is closed. Playback into a file runs as fast as the player produces
// blocks.
type WAVFile struct {
	w io.WriteSeeker

	mu   sync.Mutex
	used bool
}

func NewWAVFile(w io.WriteSeeker) *WAVFile {
	return &WAVFile{w: w}
}

func (f *WAVFile) MinBufferSize(_, _ int) int { return 0 }

func (f *WAVFile) Open(cfg Config) (Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.used {
		return nil, ErrSinkInUse
	}
	f.used = true

	return &wavDevice{
		cfg:  cfg,
		gate: newGate(),
		enc:  wav.NewEncoder(f.w, cfg.SampleRate, wavBitDepth, cfg.Channels, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: cfg.Channels, SampleRate: cfg.SampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

type wavDevice struct {
	cfg  Config
	gate *gate

	mu     sync.Mutex
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	played atomic.Int64
}

func (d *wavDevice) Config() Config { return d.cfg }

func (d *wavDevice) Play() error  { return d.gate.set(gatePlaying) }
func (d *wavDevice) Pause() error { return d.gate.set(gatePaused) }
func (d *wavDevice) Stop() error  { return d.gate.set(gateStopped) }

func (d *wavDevice) Write(samples []int16) (int, error) {
	if err := d.gate.pass(); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enc == nil {
		return 0, ErrClosed
	}

	if cap(d.buf.Data) < len(samples) {
		d.buf.Data = make([]int, len(samples))
	}
	d.buf.Data = d.buf.Data[:len(samples)]
	for i, s := range samples {
		d.buf.Data[i] = int(s)
	}

	if err := d.enc.Write(d.buf); err != nil {
		return 0, fmt.Errorf("encoding wav: %w", err)
	}
	d.played.Add(int64(len(samples) / d.cfg.Channels))

	return len(samples), nil
}

func (d *wavDevice) Buffered() int { return 0 }

func (d *wavDevice) FramesPlayed() int64 { return d.played.Load() }

func (d *wavDevice) Close() error {
	d.gate.close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enc == nil {
		return nil
	}
	enc := d.enc
	d.enc = nil

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing wav: %w", err)
	}

	return nil
}
