// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"
	"sync"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audplay/audio"
)

const (
	// FrameSamples is the number of frames in one MPEG-1 layer III frame.
	// NextBlock returns blocks of this many frames.
	FrameSamples = 1152

	// go-mp3 always produces 16-bit stereo.
	outputChannels = 2
	blockBytes     = FrameSamples * outputChannels * 2

	// MaxConsecutiveErrors read failures in a row end the stream.
	MaxConsecutiveErrors = 8
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// Decoder implements audio.Decoder with github.com/hajimehoshi/go-mp3.
type Decoder struct {
	mu sync.Mutex

	src        io.Reader
	dec        mp3Reader
	sampleRate int
	buf        []byte
	pos        int64
	failures   int
	ready      bool
	done       bool
}

// New returns an unopened decoder. It matches audio.NewDecoderFunc.
func New() audio.Decoder { return &Decoder{} }

func (d *Decoder) Open(r io.Reader) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeLocked()
	d.src = r

	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", audio.ErrUnsupportedFormat, ErrNotMP3, err)
	}
	if dec.SampleRate() <= 0 {
		return fmt.Errorf("%w: %w", audio.ErrUnsupportedFormat, ErrNotMP3)
	}

	d.openReader(dec)
	return nil
}

func (d *Decoder) openReader(dec mp3Reader) {
	d.dec = dec
	d.sampleRate = dec.SampleRate()
	d.buf = make([]byte, blockBytes)
	d.ready = true
}

func (d *Decoder) NextBlock() ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFatal, ErrNotOpen)
	}
	if d.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(d.dec, d.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		d.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Final, shorter block.
		d.done = true
	default:
		d.failures++
		if d.failures >= MaxConsecutiveErrors {
			d.done = true
			return nil, fmt.Errorf("%w: %w: %w", audio.ErrDecodeFatal, ErrTooManyErrors, err)
		}

		return nil, fmt.Errorf("%w: %w", audio.ErrTransientDecode, err)
	}
	d.failures = 0

	samples := n / 2
	samples -= samples % outputChannels
	if samples == 0 {
		return nil, io.EOF
	}

	block := make([]int16, samples)
	for i := range block {
		block[i] = int16(uint16(d.buf[2*i]) | uint16(d.buf[2*i+1])<<8)
	}
	d.pos += int64(samples / outputChannels)

	return block, nil
}

func (d *Decoder) SampleRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.sampleRate
}

func (d *Decoder) Channels() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return 0
	}

	return outputChannels
}

func (d *Decoder) IsReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ready
}

func (d *Decoder) Position() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pos
}

func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.closeLocked()
}

func (d *Decoder) closeLocked() error {
	src := d.src
	d.src, d.dec, d.buf = nil, nil, nil
	d.sampleRate, d.pos, d.failures = 0, 0, 0
	d.ready, d.done = false, false

	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing mp3 source: %w", err)
		}
	}

	return nil
}
