// SPDX-License-Identifier: EPL-2.0

package device

import "sync"

type gateState uint8

const (
	gateStopped gateState = iota
	gatePlaying
	gatePaused
	gateClosed
)

// gate holds writers back while a device is paused. Devices without a
// real queue use it to give Pause the same backpressure a speaker has.
type gate struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state gateState
}

func newGate() *gate {
	g := &gate{}
	g.cond = sync.NewCond(&g.mu)

	return g
}

func (g *gate) set(s gateState) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == gateClosed {
		return ErrClosed
	}
	g.state = s
	g.cond.Broadcast()

	return nil
}

// pass blocks while paused. It returns nil once writes may proceed.
func (g *gate) pass() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.state == gatePaused {
		g.cond.Wait()
	}

	switch g.state {
	case gateStopped:
		return ErrStopped
	case gateClosed:
		return ErrClosed
	default:
		return nil
	}
}

func (g *gate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = gateClosed
	g.cond.Broadcast()
}

func (g *gate) current() gateState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}
