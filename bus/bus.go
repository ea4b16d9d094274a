// SPDX-License-Identifier: EPL-2.0

package bus

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/audplay/audio"
	"github.com/rs/zerolog"
)

// DefaultBuffer is the number of blocks a subscription can hold before new
// blocks are dropped for it. At 1024 frames per block and 44.1 kHz, 256
// pre/post pairs are about three seconds of audio.
const DefaultBuffer = 256

// Bus fans sample blocks out to any number of subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the block
// and the miss is counted on its Subscription. Each subscriber sees blocks
// in publish order. The zero value is not usable, create one with New.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	buffer int
	log    zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report the first drop of every
// subscription.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// WithDefaultBuffer sets the buffer used by subscriptions that do not ask
// for one. Values below 1 are ignored.
func WithDefaultBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: DefaultBuffer,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscription is one registered consumer. Blocks arrive on C until the
// subscription is cancelled or the bus is closed, then C is closed.
type Subscription struct {
	C <-chan audio.SampleBlock

	c       chan audio.SampleBlock
	kinds   kindSet
	dropped atomic.Uint64
	done    chan struct{}
	bus     *Bus
}

// Dropped reports how many blocks were not delivered because C was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Done is closed once the subscription has stopped. For subscriptions made
// by SubscribeFunc this happens after the callback has returned for the
// last time.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Unsubscribe removes the subscription from its bus. Calling it more than
// once is safe.
func (s *Subscription) Unsubscribe() { s.bus.remove(s) }

// Subscribe registers a channel subscriber.
func (b *Bus) Subscribe(opts ...SubscribeOption) *Subscription {
	cfg := subscribeConfig{buffer: b.buffer}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := b.newSubscription(cfg)
	close(s.done)

	return s
}

// SubscribeFunc registers fn as a subscriber. fn runs on its own goroutine,
// one block at a time, in publish order. It may call Unsubscribe on the
// returned subscription.
func (b *Bus) SubscribeFunc(fn func(audio.SampleBlock), opts ...SubscribeOption) *Subscription {
	cfg := subscribeConfig{buffer: b.buffer}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := b.newSubscription(cfg)

	go func() {
		defer close(s.done)

		for blk := range s.c {
			fn(blk)
		}
	}()

	return s
}

func (b *Bus) newSubscription(cfg subscribeConfig) *Subscription {
	c := make(chan audio.SampleBlock, cfg.buffer)
	s := &Subscription{
		C:     c,
		c:     c,
		kinds: cfg.kinds,
		done:  make(chan struct{}),
		bus:   b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(c)

		return s
	}
	b.subs[s] = struct{}{}

	return s
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.c)
}

// Publish hands blk to every subscriber that accepts its kind. The
// subscribers share the sample slice, so the caller must not modify it
// afterwards.
func (b *Bus) Publish(blk audio.SampleBlock) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if !s.kinds.has(blk.Kind) {
			continue
		}

		select {
		case s.c <- blk:
		default:
			if s.dropped.Add(1) == 1 {
				b.log.Debug().
					Stringer("kind", blk.Kind).
					Uint64("seq", blk.Sequence).
					Msg("bus subscriber is full, dropping blocks")
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Close ends every subscription. Publishing to a closed bus does nothing
// and new subscriptions start out closed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for s := range b.subs {
		close(s.c)
	}
	clear(b.subs)
}
