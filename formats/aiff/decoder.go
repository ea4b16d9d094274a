// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audplay/audio"
)

// BlockFrames is the number of frames NextBlock returns per call.
const BlockFrames = 1024

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Decoder implements audio.Decoder with github.com/go-audio/aiff. AIFF
// samples are big-endian and signed at every depth.
type Decoder struct {
	mu sync.Mutex

	src        io.Reader
	dec        aiffReader
	buf        *goaudio.IntBuffer
	sampleRate int
	channels   int
	bitDepth   int
	pos        int64
	ready      bool
	done       bool
}

// New returns an unopened decoder. It matches audio.NewDecoderFunc.
func New() audio.Decoder { return &Decoder{} }

func unsupported(err error) error {
	return fmt.Errorf("%w: %w", audio.ErrUnsupportedFormat, err)
}

func (d *Decoder) Open(r io.Reader) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeLocked()
	d.src = r

	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return unsupported(ErrNotAiffFile)
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return unsupported(ErrUnsupportedAiffLayout)
	}

	return d.openReader(dec, format.SampleRate, format.NumChannels, int(dec.BitDepth))
}

func (d *Decoder) openReader(dec aiffReader, sampleRate, channels, bitDepth int) error {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return unsupported(fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth))
	}

	d.dec = dec
	d.sampleRate = sampleRate
	d.channels = channels
	d.bitDepth = bitDepth
	d.buf = &goaudio.IntBuffer{
		Data:   make([]int, BlockFrames*channels),
		Format: &goaudio.Format{SampleRate: sampleRate, NumChannels: channels},
	}
	d.ready = true

	return nil
}

// scale moves a sample of the given depth to 16 bits.
func scale(v, depth int) int16 {
	switch depth {
	case 8:
		return int16(v << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
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

	d.buf.Data = d.buf.Data[:cap(d.buf.Data)]
	n, err := d.dec.PCMBuffer(d.buf)
	if n < len(d.buf.Data) {
		d.done = true
	}
	if err != nil && n == 0 {
		d.done = true
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFatal, err)
	}

	n -= n % d.channels
	if n == 0 {
		d.done = true
		return nil, io.EOF
	}

	block := make([]int16, n)
	for i, v := range d.buf.Data[:n] {
		block[i] = scale(v, d.bitDepth)
	}
	d.pos += int64(n / d.channels)

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
	d.src, d.dec, d.buf = nil, nil, nil
	d.sampleRate, d.channels, d.bitDepth, d.pos = 0, 0, 0, 0
	d.ready, d.done = false, false

	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing aiff source: %w", err)
		}
	}

	return nil
}
