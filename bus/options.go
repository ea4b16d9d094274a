// SPDX-License-Identifier: EPL-2.0

package bus

import "github.com/ik5/audplay/audio"

type subscribeConfig struct {
	buffer int
	kinds  kindSet
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

// WithBuffer sets how many blocks may queue for the subscriber. Values
// below 1 are ignored.
func WithBuffer(n int) SubscribeOption {
	return func(c *subscribeConfig) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithKinds limits the subscription to the given block kinds. Without it
// every kind is delivered.
func WithKinds(kinds ...audio.BlockKind) SubscribeOption {
	return func(c *subscribeConfig) {
		for _, k := range kinds {
			c.kinds |= 1 << k
		}
	}
}

// kindSet is a bit set of audio.BlockKind. The empty set accepts all.
type kindSet uint8

func (s kindSet) has(k audio.BlockKind) bool {
	return s == 0 || s&(1<<k) != 0
}
