// SPDX-License-Identifier: EPL-2.0

package device

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Memory is a Factory for devices that play instantly into memory. Nothing
// is ever queued, so a player draining a memory device does not wait.
type Memory struct {
	discard bool

	mu     sync.Mutex
	opened []*MemoryDevice
}

// MemoryOption configures a Memory factory.
type MemoryOption func(*Memory)

// Discard drops written samples instead of keeping them. Used for null
// output where only the side effects of playback matter.
func Discard() MemoryOption {
	return func(m *Memory) { m.discard = true }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) MinBufferSize(_, _ int) int { return 0 }

func (m *Memory) Open(cfg Config) (Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &MemoryDevice{cfg: cfg, discard: m.discard, gate: newGate()}

	m.mu.Lock()
	m.opened = append(m.opened, d)
	m.mu.Unlock()

	return d, nil
}

// Devices returns every device opened so far, oldest first.
func (m *Memory) Devices() []*MemoryDevice {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.opened)
}

// MemoryDevice collects written samples.
type MemoryDevice struct {
	cfg     Config
	discard bool
	gate    *gate

	mu      sync.Mutex
	samples []int16
	played  atomic.Int64
	writes  atomic.Int64
}

func (d *MemoryDevice) Config() Config { return d.cfg }

func (d *MemoryDevice) Play() error {
	if d.gate.current() == gateStopped {
		d.played.Store(0)
	}

	return d.gate.set(gatePlaying)
}

func (d *MemoryDevice) Pause() error { return d.gate.set(gatePaused) }

func (d *MemoryDevice) Stop() error { return d.gate.set(gateStopped) }

func (d *MemoryDevice) Close() error {
	d.gate.close()

	return nil
}

func (d *MemoryDevice) Write(samples []int16) (int, error) {
	if err := d.gate.pass(); err != nil {
		return 0, err
	}

	if !d.discard {
		d.mu.Lock()
		d.samples = append(d.samples, samples...)
		d.mu.Unlock()
	}
	d.writes.Add(1)
	d.played.Add(int64(len(samples) / d.cfg.Channels))

	return len(samples), nil
}

func (d *MemoryDevice) Buffered() int { return 0 }

func (d *MemoryDevice) FramesPlayed() int64 { return d.played.Load() }

// Samples returns a copy of everything written. It is empty for a
// discarding device.
func (d *MemoryDevice) Samples() []int16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.samples)
}

// Writes counts successful Write calls.
func (d *MemoryDevice) Writes() int64 { return d.writes.Load() }

// Closed reports whether Close was called.
func (d *MemoryDevice) Closed() bool { return d.gate.current() == gateClosed }
