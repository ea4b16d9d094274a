// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/internal/audiotest"
)

func TestNewChannelMixer_Shortcuts(t *testing.T) {
	t.Parallel()

	stereo := audiotest.NewSilentSource(8000, 2, 10)

	assert.Same(t, Source(stereo), NewChannelMixer(stereo, 2))
	assert.IsType(t, &MonoMixer{}, NewChannelMixer(stereo, 1))
	assert.IsType(t, &ChannelMixer{}, NewChannelMixer(stereo, 4))
}

func TestChannelMixer_MonoToStereo(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 1, 4, func(f, _ int) float32 { return float32(f) / 10 })
	m := NewChannelMixer(src, 2)
	require.Equal(t, 2, m.Channels())

	buf := make([]float32, 16)
	n, err := m.ReadSamples(buf)
	assert.ErrorIs(t, err, io.EOF)
	require.Equal(t, 8, n)
	assert.InDeltaSlice(t, []float32{0, 0, 0.1, 0.1, 0.2, 0.2, 0.3, 0.3}, buf[:n], 1e-6)
}

func TestChannelMixer_StereoToQuad(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(8000, 2, 2, func(_, c int) float32 { return []float32{0.5, -0.5}[c] })
	m := NewChannelMixer(src, 4)

	buf := make([]float32, 8)
	n, _ := m.ReadSamples(buf)
	require.Equal(t, 8, n)
	assert.InDeltaSlice(t, []float32{0.5, -0.5, 0.5, -0.5, 0.5, -0.5, 0.5, -0.5}, buf, 1e-6)
}

func TestChannelMixer_InvalidDstSize(t *testing.T) {
	t.Parallel()

	m := NewChannelMixer(audiotest.NewSilentSource(8000, 1, 10), 2)
	_, err := m.ReadSamples(make([]float32, 3))
	assert.ErrorIs(t, err, ErrInvalidDstSize)
}
