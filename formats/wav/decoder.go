// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audplay/audio"
)

// BlockFrames is the number of frames NextBlock returns per call.
const BlockFrames = 1024

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of gowav.Decoder used after the headers are parsed.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Decoder reads integer PCM WAV files of 8, 16, 24 or 32 bits and hands
// them out as 16-bit blocks.
type Decoder struct {
	mu sync.Mutex

	src        io.Reader
	dec        pcmReader
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

	// go-audio needs to seek around the RIFF chunks.
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return unsupported(ErrNotWavFile)
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return unsupported(ErrOnlyPCMSupported)
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return unsupported(fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth))
	}

	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return unsupported(ErrInvalidChannelCount)
	}

	if err := dec.FwdToPCM(); err != nil {
		return unsupported(fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err))
	}

	d.dec = dec
	d.sampleRate = int(dec.SampleRate)
	d.channels = int(dec.NumChans)
	d.bitDepth = int(dec.BitDepth)
	d.buf = &goaudio.IntBuffer{
		Data:   make([]int, BlockFrames*d.channels),
		Format: &goaudio.Format{SampleRate: d.sampleRate, NumChannels: d.channels},
	}
	d.ready = true

	return nil
}

// to16 scales a go-audio integer sample of the given depth to 16 bits.
// 8-bit WAV data is unsigned.
func to16(v, depth int) int16 {
	switch depth {
	case 8:
		return int16((v - 128) << 8)
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
	if err != nil && !errors.Is(err, io.EOF) {
		d.done = true
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFatal, err)
	}
	if n < len(d.buf.Data) {
		d.done = true
	}

	n -= n % d.channels
	if n == 0 {
		d.done = true
		return nil, io.EOF
	}

	block := make([]int16, n)
	for i, v := range d.buf.Data[:n] {
		block[i] = to16(v, d.bitDepth)
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

// BitDepth is the bit depth stored in the file, before conversion.
func (d *Decoder) BitDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.bitDepth
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
	d.sampleRate, d.channels, d.bitDepth = 0, 0, 0
	d.pos, d.ready, d.done = 0, false, false

	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing wav source: %w", err)
		}
	}

	return nil
}
