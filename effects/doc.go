// SPDX-License-Identifier: EPL-2.0

/*
Package effects implements the float effect chain that sits between the
decoder and the output device.

Samples are interleaved float32 values in [-1, 1]. An Effect maps one
input block to an output block of the same length, and a Chain runs a
list of effects in order:

	chain := effects.NewChain(
		effects.NewGain(0.8),
		effects.NewPeakingEQ(1000, 1, 3),
		effects.NewSoftClipper(effects.DefaultSoftClipFactor),
	)
	chain.Prepare(44100, 2)
	chain.Apply(in, out)

Effects with per-stream state (delay lines, oscillators, filter memories)
implement Preparer and allocate that state for the current sample rate
and channel count.
*/
package effects
