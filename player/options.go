// SPDX-License-Identifier: EPL-2.0

package player

import (
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/bus"
	"github.com/ik5/audplay/effects"
	"github.com/rs/zerolog"
)

// DefaultDrainTimeout is how long a finished session waits for the device
// to play out its queue.
const DefaultDrainTimeout = time.Second

// drainPoll is how often the queue is checked while draining.
const drainPoll = 10 * time.Millisecond

type Option func(*Engine)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithBus publishes pre and post filter blocks on b.
func WithBus(b *bus.Bus) Option {
	return func(e *Engine) { e.bus = b }
}

func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithRegistry sets the decoders available to the engine. Without it the
// engine has an empty registry and every track is unsupported.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithOpener replaces the default FileOpener.
func WithOpener(o Opener) Option {
	return func(e *Engine) { e.opener = o }
}

// WithDrainTimeout bounds the wait for queued audio at the end of a
// session. Zero skips the wait.
func WithDrainTimeout(d time.Duration) Option {
	return func(e *Engine) { e.drainTimeout = max(d, 0) }
}

// WithEffects installs an initial effect chain.
func WithEffects(fx ...effects.Effect) Option {
	return func(e *Engine) { e.chain.Store(effects.NewChain(fx...)) }
}
