// SPDX-License-Identifier: EPL-2.0

package player

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/formats/wav"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockListener struct {
	mock.Mock
}

func (m *mockListener) OnStartPlayback() { m.Called() }
func (m *mockListener) OnCompletion()    { m.Called() }

func newMockListener() *mockListener {
	l := &mockListener{}
	l.On("OnStartPlayback").Return()
	l.On("OnCompletion").Return()

	return l
}

// wavFS builds a file system holding one 16-bit WAV file per entry.
func wavFS(t *testing.T, files map[string]wavSpec) fstest.MapFS {
	t.Helper()

	fsys := fstest.MapFS{}
	for name, f := range files {
		var buf bytes.Buffer
		require.NoError(t, wav.WriteWAV16(&buf, f.rate, f.channels, f.samples))
		fsys[name] = &fstest.MapFile{Data: buf.Bytes()}
	}

	return fsys
}

type wavSpec struct {
	rate     int
	channels int
	samples  []int16
}

// scriptedRegistry serves dec for the .scr extension.
func scriptedRegistry(dec audio.Decoder) *audio.Registry {
	r := audio.NewRegistry()
	r.Register(".scr", func() audio.Decoder { return dec })

	return r
}

var emptyOpener = OpenerFunc(func(string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
})

// endlessDecoder produces the same block forever.
type endlessDecoder struct {
	rate, channels int
	block          []int16

	mu  sync.Mutex
	pos int64
}

func (d *endlessDecoder) Open(io.Reader) error { return nil }

func (d *endlessDecoder) NextBlock() ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pos += int64(len(d.block) / d.channels)

	return append([]int16(nil), d.block...), nil
}

func (d *endlessDecoder) SampleRate() int { return d.rate }
func (d *endlessDecoder) Channels() int   { return d.channels }
func (d *endlessDecoder) IsReady() bool   { return true }
func (d *endlessDecoder) Close() error    { return nil }

func (d *endlessDecoder) Position() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pos
}

// fakeFactory records every device call.
type fakeFactory struct {
	openErr error
	shortBy int
	// buffered is what a new device reports queued at first; it drops by
	// drainStep on every Buffered call.
	buffered  int
	drainStep int

	mu      sync.Mutex
	devices []*fakeDevice
}

func (f *fakeFactory) MinBufferSize(_, _ int) int { return 1 }

func (f *fakeFactory) Open(cfg device.Config) (device.Device, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}

	d := &fakeDevice{cfg: cfg, shortBy: f.shortBy, buffered: f.buffered, drainStep: f.drainStep}

	f.mu.Lock()
	f.devices = append(f.devices, d)
	f.mu.Unlock()

	return d, nil
}

func (f *fakeFactory) opened() []*fakeDevice {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*fakeDevice(nil), f.devices...)
}

type fakeDevice struct {
	cfg device.Config

	mu      sync.Mutex
	plays   int
	pauses  int
	stops   int
	closes  int
	writes  int
	frames  int64
	shortBy int

	buffered  int
	drainStep int
}

func (d *fakeDevice) Config() device.Config { return d.cfg }

func (d *fakeDevice) count(n *int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	*n++

	return nil
}

func (d *fakeDevice) Play() error  { return d.count(&d.plays) }
func (d *fakeDevice) Pause() error { return d.count(&d.pauses) }
func (d *fakeDevice) Stop() error  { return d.count(&d.stops) }
func (d *fakeDevice) Close() error { return d.count(&d.closes) }

func (d *fakeDevice) Write(s []int16) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes++
	n := max(len(s)-d.shortBy, 0)
	d.frames += int64(n / d.cfg.Channels)

	return n, nil
}

func (d *fakeDevice) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.buffered
	d.buffered = max(d.buffered-d.drainStep, 0)

	return n
}

// pending peeks at the queue without draining it.
func (d *fakeDevice) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buffered
}

func (d *fakeDevice) FramesPlayed() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.frames
}

func (d *fakeDevice) counts() (plays, pauses, stops, closes, writes int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.plays, d.pauses, d.stops, d.closes, d.writes
}

func waitDone(t *testing.T, e *Engine) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx), "session did not finish")
}
