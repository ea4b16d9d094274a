// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/audio"
)

// mockOggVorbisReader hands out at most packet values per Read, like the
// real codec does.
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	offset     int
	packet     int
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		err := m.err
		m.err = nil
		return 0, err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf[:min(len(buf), m.packet)], m.samples[m.offset:])
	m.offset += n

	return n, nil
}

func TestDecoder_OpenRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("OggS but not really a vorbis stream")} {
		d := New()
		err := d.Open(bytes.NewReader(data))
		require.ErrorIs(t, err, audio.ErrUnsupportedFormat)
		assert.ErrorIs(t, err, ErrNotVorbis)
		assert.False(t, d.IsReady())
	}
}

func TestDecoder_FillsBlocksAcrossPackets(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 2*(BlockFrames+10))
	for i := range samples {
		samples[i] = 0.5
	}

	d := &Decoder{}
	require.NoError(t, d.openReader(&mockOggVorbisReader{
		sampleRate: 48000, channels: 2, samples: samples, packet: 300,
	}))
	assert.Equal(t, 48000, d.SampleRate())
	assert.Equal(t, 2, d.Channels())

	b, err := d.NextBlock()
	require.NoError(t, err)
	assert.Len(t, b, 2*BlockFrames)
	assert.Equal(t, int16(16384), b[0])

	b, err = d.NextBlock()
	require.NoError(t, err)
	assert.Len(t, b, 20)

	_, err = d.NextBlock()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, int64(BlockFrames+10), d.Position())
}

func TestDecoder_TransientError(t *testing.T) {
	t.Parallel()

	d := &Decoder{}
	require.NoError(t, d.openReader(&mockOggVorbisReader{
		sampleRate: 44100, channels: 1, samples: make([]float32, 10), packet: 10,
		err: errors.New("corrupt packet"),
	}))

	_, err := d.NextBlock()
	require.ErrorIs(t, err, audio.ErrTransientDecode)

	b, err := d.NextBlock()
	require.NoError(t, err)
	assert.Len(t, b, 10)
}

func TestDecoder_NotOpen(t *testing.T) {
	t.Parallel()

	_, err := New().NextBlock()
	assert.ErrorIs(t, err, audio.ErrDecodeFatal)
}
