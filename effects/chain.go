// SPDX-License-Identifier: EPL-2.0

package effects

// Chain runs effects one after another. Each effect reads the previous
// effect's output; nil entries are skipped. A Chain with no effects, and a
// nil *Chain, copy the input unchanged.
//
// A Chain is not safe for concurrent use. The player hands a chain to a
// single goroutine and swaps whole chains instead of editing one.
type Chain struct {
	effects []Effect
	format  format
}

func NewChain(fx ...Effect) *Chain {
	return &Chain{effects: append([]Effect(nil), fx...)}
}

// Len counts the non-nil effects.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}

	n := 0
	for _, fx := range c.effects {
		if fx != nil {
			n++
		}
	}

	return n
}

// Effects returns a copy of the configured effects, nil entries included.
func (c *Chain) Effects() []Effect {
	if c == nil {
		return nil
	}

	return append([]Effect(nil), c.effects...)
}

// Prepare forwards the stream format to every Preparer in the chain. It
// does nothing when the format has not changed since the last call.
func (c *Chain) Prepare(sampleRate, channels int) {
	if c == nil || !c.format.update(sampleRate, channels) {
		return
	}

	for _, fx := range c.effects {
		if p, ok := fx.(Preparer); ok {
			p.Prepare(c.format.sampleRate, c.format.channels)
		}
	}
}

// Apply runs the chain over in and leaves the result in out. The slices
// must have equal length.
func (c *Chain) Apply(in, out []float32) {
	src := in
	ran := false

	if c != nil {
		for _, fx := range c.effects {
			if fx == nil {
				continue
			}
			fx.Apply(src, out)
			src = out
			ran = true
		}
	}

	if !ran {
		copy(out, in)
	}
}
