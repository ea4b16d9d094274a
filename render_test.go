// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/bus"
	"github.com/ik5/audplay/effects"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, rate, channels int, samples []int16) fstest.MapFS {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, wav.WriteWAV16(&buf, rate, channels, samples))

	return fstest.MapFS{"in.wav": {Data: buf.Bytes()}}
}

func decodeFile(t *testing.T, path string) (rate, channels int, samples []int16) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)

	dec := wav.New()
	require.NoError(t, dec.Open(f))
	defer dec.Close()

	for {
		blk, err := dec.NextBlock()
		if err != nil {
			break
		}
		samples = append(samples, blk...)
	}

	return dec.SampleRate(), dec.Channels(), samples
}

func TestRenderToWAV(t *testing.T) {
	t.Parallel()

	in := audiotest.Sine16(22050, 2, 5000, 440, 0.8)

	tests := []struct {
		name    string
		effects []effects.Effect
		want    func(int16) int16
	}{
		{"identity", nil, func(s int16) int16 { return s }},
		{"gain", []effects.Effect{effects.NewGain(0.5)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.wav")
			out, err := os.Create(path)
			require.NoError(t, err)

			frames, err := RenderToWAV(context.Background(), out, "in.wav", RenderOptions{
				Opener:  player.FSOpener{FS: fixture(t, 22050, 2, in)},
				Effects: tt.effects,
			})
			require.NoError(t, err)
			_ = out.Close()
			assert.EqualValues(t, 5000, frames)

			rate, ch, got := decodeFile(t, path)
			assert.Equal(t, 22050, rate)
			assert.Equal(t, 2, ch)
			require.Len(t, got, len(in))

			if tt.want != nil {
				for i := range in {
					assert.Equal(t, tt.want(in[i]), got[i])
				}
				return
			}
			for i := range in {
				assert.InDelta(t, float64(in[i])/2, float64(got[i]), 1)
			}
		})
	}
}

func TestRenderToWAVPublishes(t *testing.T) {
	t.Parallel()

	b := bus.New()
	sub := b.Subscribe(bus.WithKinds(audio.PostFilter), bus.WithBuffer(64))

	path := filepath.Join(t.TempDir(), "out.wav")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	_, err = RenderToWAV(context.Background(), out, "in.wav", RenderOptions{
		Opener: player.FSOpener{FS: fixture(t, 8000, 1, audiotest.Ramp(0, 3000))},
		Bus:    b,
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	total := 0
	for blk := range sub.C {
		total += len(blk.Samples)
	}
	assert.Equal(t, 3000, total)
}

func TestRenderToWAVErrors(t *testing.T) {
	t.Parallel()

	out, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	require.NoError(t, err)
	defer out.Close()

	_, err = RenderToWAV(context.Background(), out, "song.xyz", RenderOptions{})
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)

	_, err = RenderToWAV(context.Background(), out, filepath.Join(t.TempDir(), "missing.wav"), RenderOptions{})
	assert.ErrorIs(t, err, player.ErrOpenTrack)
}

func TestRenderToWAVCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	require.NoError(t, err)
	defer out.Close()

	frames, err := RenderToWAV(ctx, out, "in.wav", RenderOptions{
		Opener: player.FSOpener{FS: fixture(t, 8000, 1, audiotest.Ramp(0, 8000))},
	})
	assert.LessOrEqual(t, frames, int64(8000))
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestRenderToWAVFatalDecode(t *testing.T) {
	t.Parallel()

	dec := &audiotest.ScriptedDecoder{Rate: 8000, Chans: 1, Steps: []audiotest.Step{
		{Block: audiotest.Ramp(0, 100)},
		{Err: audio.ErrDecodeFatal},
		{Block: audiotest.Ramp(0, 100)},
	}}
	reg := audio.NewRegistry()
	reg.Register(".scr", func() audio.Decoder { return dec })

	path := filepath.Join(t.TempDir(), "out.wav")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	frames, err := RenderToWAV(context.Background(), out, "broken.scr", RenderOptions{
		Registry: reg,
		Opener: player.OpenerFunc(func(string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("")), nil
		}),
	})
	require.ErrorIs(t, err, audio.ErrDecodeFatal)
	assert.EqualValues(t, 100, frames, "frames before the failure are kept")
}
