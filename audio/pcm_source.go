// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// PCMSource reads interleaved signed 16-bit little-endian PCM from r.
type PCMSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	buf        []byte
	done       bool
}

func NewPCMSource(r io.Reader, sampleRate, channels int) *PCMSource {
	return &PCMSource{
		r:          r,
		sampleRate: sampleRate,
		channels:   channels,
		buf:        make([]byte, 4096),
	}
}

func (s *PCMSource) SampleRate() int { return s.sampleRate }
func (s *PCMSource) Channels() int   { return s.channels }
func (s *PCMSource) BufSize() int    { return cap(s.buf) / 2 }

func (s *PCMSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing pcm reader: %w", err)
		}
	}

	return nil
}

// ReadSamples converts the next len(dst) samples. A trailing partial frame
// at the end of the stream is dropped.
func (s *PCMSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.done {
		return 0, io.EOF
	}

	size := len(dst) * 2
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	s.buf = s.buf[:size]

	n, err := io.ReadFull(s.r, s.buf)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
	case err != nil:
		return 0, fmt.Errorf("reading pcm: %w", err)
	}

	samples := (n / 2 / s.channels) * s.channels
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	if samples == 0 && s.done {
		return 0, io.EOF
	}

	return samples, nil
}
