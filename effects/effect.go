// SPDX-License-Identifier: EPL-2.0

package effects

// Effect transforms one block of interleaved float samples.
//
// in and out always have the same length and may be the same slice, so an
// effect must read in[i] before it writes out[i]. Effects may keep state
// between calls (filter memories, oscillator phase); that state lives as
// long as the effect value. Blocks normally hold whole frames; frame based
// effects pass a trailing partial frame through unchanged.
type Effect interface {
	Apply(in, out []float32)
}

// Preparer is implemented by effects whose state depends on the stream
// format. Prepare is called before the first block of a stream and again
// whenever the format changes. Calling it with the current format is a
// no-op.
type Preparer interface {
	Prepare(sampleRate, channels int)
}

// Func adapts a stateless per-sample function to Effect.
type Func func(x float32) float32

func (f Func) Apply(in, out []float32) {
	for i, x := range in {
		out[i] = f(x)
	}
}

// Default stream format assumed by effects that were never prepared.
const (
	defaultSampleRate = 44100
	defaultChannels   = 2
)

// format tracks the stream format for stateful effects.
type format struct {
	sampleRate int
	channels   int
}

// update stores a new format and reports whether it changed.
func (f *format) update(sampleRate, channels int) bool {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if channels <= 0 {
		channels = defaultChannels
	}
	if f.sampleRate == sampleRate && f.channels == channels {
		return false
	}
	f.sampleRate, f.channels = sampleRate, channels

	return true
}

func (f *format) ready() bool { return f.sampleRate > 0 }

// passPartial copies the samples after the last whole frame of in to out.
func passPartial(in, out []float32, ch int) {
	n := len(in) - len(in)%ch
	copy(out[n:], in[n:])
}

func clamp[T ~float32 | ~float64 | ~int](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
