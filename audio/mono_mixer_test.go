// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/internal/audiotest"
)

func TestMonoMixer_Folding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		wave     func(frame, channel int) float32
		want     float32
	}{
		{
			name:     "mono passthrough",
			channels: 1,
			wave:     func(int, int) float32 { return 0.25 },
			want:     0.25,
		},
		{
			name:     "stereo average",
			channels: 2,
			wave:     func(_, c int) float32 { return []float32{0.5, -0.1}[c] },
			want:     0.2,
		},
		{
			name:     "six channels",
			channels: 6,
			wave:     func(_, c int) float32 { return float32(c) * 0.1 },
			want:     0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewMockSource(8000, tt.channels, 64, tt.wave)
			m := NewMonoMixer(src)
			assert.Equal(t, 1, m.Channels())
			assert.Equal(t, 8000, m.SampleRate())

			buf := make([]float32, 32)
			n, err := m.ReadSamples(buf)
			require.NoError(t, err)
			require.Equal(t, 32, n)
			for _, v := range buf[:n] {
				assert.InDelta(t, tt.want, v, 1e-6)
			}
		})
	}
}

func TestMonoMixer_EOFAndEmpty(t *testing.T) {
	t.Parallel()

	m := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 10))

	n, err := m.ReadSamples(nil)
	assert.Zero(t, n)
	assert.NoError(t, err)

	buf := make([]float32, 64)
	n, err = m.ReadSamples(buf)
	assert.Equal(t, 10, n)
	assert.ErrorIs(t, err, io.EOF)

	n, err = m.ReadSamples(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestMonoMixer_GrowsScratch(t *testing.T) {
	t.Parallel()

	m := NewMonoMixer(audiotest.NewConstantSource(8000, 4, 20000, 0.5))
	buf := make([]float32, 10000)

	n, err := m.ReadSamples(buf)
	require.NoError(t, err)
	assert.Equal(t, 10000, n)
	assert.InDelta(t, 0.5, buf[9999], 1e-6)
}

func TestMonoMixer_Close(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 2, 10)
	require.NoError(t, NewMonoMixer(src).Close())
	assert.True(t, src.Closed())
}

func BenchmarkMonoMixer_StereoToMono(b *testing.B) {
	src := audiotest.NewSineSource(44100, 2, 1<<30, 440)
	m := NewMonoMixer(src)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for range b.N {
		_, _ = m.ReadSamples(buf)
	}
}
