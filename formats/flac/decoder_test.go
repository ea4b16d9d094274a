// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mewkiz/flac/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/audio"
)

type fakeStream struct {
	frames []*frame.Frame
	err    error
	closed bool
}

func (s *fakeStream) ParseNext() (*frame.Frame, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

func stereoFrame(left, right []int32) *frame.Frame {
	f := &frame.Frame{
		Subframes: []*frame.Subframe{{Samples: left}, {Samples: right}},
	}
	f.BlockSize = uint16(len(left))
	return f
}

func TestDecoder_OpenRejectsGarbage(t *testing.T) {
	t.Parallel()

	d := New()
	err := d.Open(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	require.ErrorIs(t, err, audio.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, ErrNotFLAC)
	assert.False(t, d.IsReady())
}

func TestDecoder_InterleavesAndScales(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		depth int
		left  []int32
		right []int32
		want  []int16
	}{
		{name: "16-bit", depth: 16, left: []int32{1, -32768}, right: []int32{2, 32767}, want: []int16{1, 2, -32768, 32767}},
		{name: "24-bit", depth: 24, left: []int32{256, -8388608}, right: []int32{-256, 8388607}, want: []int16{1, -1, -32768, 32767}},
		{name: "8-bit", depth: 8, left: []int32{-128}, right: []int32{127}, want: []int16{-32768, 32512}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &fakeStream{frames: []*frame.Frame{stereoFrame(tt.left, tt.right)}}
			d := &Decoder{}
			require.NoError(t, d.openStream(s, 44100, 2, tt.depth))

			b, err := d.NextBlock()
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
			assert.Equal(t, int64(len(tt.left)), d.Position())

			_, err = d.NextBlock()
			assert.ErrorIs(t, err, io.EOF)

			require.NoError(t, d.Close())
			assert.True(t, s.closed)
		})
	}
}

func TestDecoder_LayoutMismatchIsTransient(t *testing.T) {
	t.Parallel()

	mono := &frame.Frame{Subframes: []*frame.Subframe{{Samples: []int32{1}}}}
	mono.BlockSize = 1
	s := &fakeStream{frames: []*frame.Frame{mono, stereoFrame([]int32{5}, []int32{6})}}

	d := &Decoder{}
	require.NoError(t, d.openStream(s, 48000, 2, 16))

	_, err := d.NextBlock()
	require.ErrorIs(t, err, audio.ErrTransientDecode)

	b, err := d.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, []int16{5, 6}, b)
}

func TestDecoder_ParseErrorIsFatal(t *testing.T) {
	t.Parallel()

	d := &Decoder{}
	require.NoError(t, d.openStream(&fakeStream{err: errors.New("crc mismatch")}, 48000, 1, 16))

	_, err := d.NextBlock()
	require.ErrorIs(t, err, audio.ErrDecodeFatal)

	_, err = d.NextBlock()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_RejectsBitDepth(t *testing.T) {
	t.Parallel()

	err := (&Decoder{}).openStream(&fakeStream{}, 48000, 2, 40)
	assert.ErrorIs(t, err, ErrBitDepth)
}
