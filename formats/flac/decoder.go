// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams with github.com/mewkiz/flac. Each call
// to NextBlock returns one FLAC frame scaled to 16 bits. The decoder is
// only part of formats.Extended.
package flac

import (
	"errors"
	"fmt"
	"io"
	"sync"

	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/ik5/audplay/audio"
)

var (
	ErrNotFLAC     = errors.New("not a FLAC stream")
	ErrBitDepth    = errors.New("unsupported FLAC bit depth")
	ErrNotOpen     = errors.New("FLAC decoder is not open")
	ErrFrameLayout = errors.New("FLAC frame does not match stream info")
)

// frameParser is the part of goflac.Stream the decoder needs.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

// Decoder implements audio.Decoder.
type Decoder struct {
	mu sync.Mutex

	src        io.Reader
	stream     frameParser
	sampleRate int
	channels   int
	bitDepth   int
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

	stream, err := goflac.New(r)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", audio.ErrUnsupportedFormat, ErrNotFLAC, err)
	}

	info := stream.Info
	if err := d.openStream(stream, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample)); err != nil {
		// Stream.Close also closes r when it can.
		_ = stream.Close()
		d.src = nil
		return err
	}

	return nil
}

func (d *Decoder) openStream(stream frameParser, sampleRate, channels, bitDepth int) error {
	if bitDepth < 4 || bitDepth > 32 {
		return fmt.Errorf("%w: %w: %d", audio.ErrUnsupportedFormat, ErrBitDepth, bitDepth)
	}
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("%w: %w", audio.ErrUnsupportedFormat, ErrNotFLAC)
	}

	d.stream = stream
	d.sampleRate = sampleRate
	d.channels = channels
	d.bitDepth = bitDepth
	d.ready = true

	return nil
}

// to16 moves a sample of the stream's depth to 16 bits.
func (d *Decoder) to16(v int32) int16 {
	if d.bitDepth > 16 {
		return int16(v >> (d.bitDepth - 16))
	}

	return int16(v << (16 - d.bitDepth))
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

	f, err := d.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		d.done = true
		return nil, io.EOF
	}
	if err != nil {
		// A broken frame usually means the rest of the stream is unusable.
		d.done = true
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFatal, err)
	}

	if len(f.Subframes) != d.channels {
		return nil, fmt.Errorf("%w: %w: %d subframes", audio.ErrTransientDecode, ErrFrameLayout, len(f.Subframes))
	}

	frames := int(f.BlockSize)
	for _, sub := range f.Subframes {
		frames = min(frames, len(sub.Samples))
	}

	block := make([]int16, frames*d.channels)
	for i := range frames {
		for c, sub := range f.Subframes {
			block[i*d.channels+c] = d.to16(sub.Samples[i])
		}
	}
	d.pos += int64(frames)

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
	stream, src := d.stream, d.src
	d.src, d.stream = nil, nil
	d.sampleRate, d.channels, d.bitDepth, d.pos = 0, 0, 0, 0
	d.ready, d.done = false, false

	// The stream closes the source itself when it was opened from one.
	if stream != nil {
		if err := stream.Close(); err != nil {
			return fmt.Errorf("closing flac stream: %w", err)
		}
		return nil
	}
	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing flac source: %w", err)
		}
	}

	return nil
}
