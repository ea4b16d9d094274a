// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// BlockFrames is the number of frames NextBlock asks the codec for.
const BlockFrames = 1024

var (
	ErrNotVorbis = errors.New("not an Ogg Vorbis stream")
	ErrNotOpen   = errors.New("vorbis decoder is not open")
)

// oggReader is an interface for oggvorbis.Reader to allow testing.
// Read fills the slice with interleaved samples and returns how many
// values (not frames) it wrote.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// Decoder implements audio.Decoder with github.com/jfreymuth/oggvorbis.
type Decoder struct {
	mu sync.Mutex

	src        io.Reader
	dec        oggReader
	sampleRate int
	channels   int
	floats     []float32
	pos        int64
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

	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", audio.ErrUnsupportedFormat, ErrNotVorbis, err)
	}

	return d.openReader(dec)
}

func (d *Decoder) openReader(dec oggReader) error {
	if dec.SampleRate() <= 0 || dec.Channels() <= 0 {
		return fmt.Errorf("%w: %w", audio.ErrUnsupportedFormat, ErrNotVorbis)
	}

	d.dec = dec
	d.sampleRate = dec.SampleRate()
	d.channels = dec.Channels()
	d.floats = make([]float32, BlockFrames*d.channels)
	d.ready = true

	return nil
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

	// The codec hands out at most one packet per call, so keep reading
	// until the block is full.
	got := 0
	for got < len(d.floats) {
		n, err := d.dec.Read(d.floats[got:])
		got += n
		if errors.Is(err, io.EOF) {
			d.done = true
			break
		}
		if err != nil {
			if got > 0 {
				break
			}
			return nil, fmt.Errorf("%w: %w", audio.ErrTransientDecode, err)
		}
		if n == 0 {
			break
		}
	}

	got -= got % d.channels
	if got == 0 {
		d.done = true
		return nil, io.EOF
	}

	block := make([]int16, got)
	utils.Float32ToPCM16(block, d.floats[:got])
	d.pos += int64(got / d.channels)

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

	return d.channels
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
	d.src, d.dec, d.floats = nil, nil, nil
	d.sampleRate, d.channels, d.pos = 0, 0, 0
	d.ready, d.done = false, false

	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing vorbis source: %w", err)
		}
	}

	return nil
}
