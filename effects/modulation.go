// SPDX-License-Identifier: EPL-2.0

package effects

import "math"

const (
	DefaultTremoloRate  = 5.0
	MaxTremoloRate      = 20.0
	DefaultTremoloDepth = 0.5

	DefaultRingModFrequency = 50.0
	MaxRingModFrequency     = 800.0

	DefaultFlangerRate  = 0.5
	MaxFlangerRate      = 1.0
	DefaultFlangerDepth = 0.7
	DefaultFlangerDelay = 0.003
	MaxFlangerDelay     = 0.015
)

// oscillator is a sine phase accumulator advanced once per frame.
type oscillator struct {
	freq  float64
	phase float64
	inc   float64
}

func (o *oscillator) reset(sampleRate int) {
	o.phase = 0
	o.inc = 2 * math.Pi * o.freq / float64(sampleRate)
}

func (o *oscillator) next() float64 {
	v := math.Sin(o.phase)
	o.phase += o.inc
	if o.phase >= 2*math.Pi {
		o.phase -= 2 * math.Pi
	}

	return v
}

// Tremolo modulates the amplitude with a low-frequency sine. depth is the
// largest attenuation, reached at the bottom of each cycle.
type Tremolo struct {
	depth float64
	lfo   oscillator
	fmt   format
}

func NewTremolo(rate, depth float64) *Tremolo {
	return &Tremolo{
		depth: clamp(depth, 0, 1),
		lfo:   oscillator{freq: clamp(rate, 0, MaxTremoloRate)},
	}
}

func (t *Tremolo) Prepare(sampleRate, channels int) {
	if t.fmt.update(sampleRate, channels) {
		t.lfo.reset(t.fmt.sampleRate)
	}
}

func (t *Tremolo) Apply(in, out []float32) {
	if !t.fmt.ready() {
		t.Prepare(0, 0)
	}

	ch := t.fmt.channels
	passPartial(in, out, ch)
	for i := 0; i+ch <= len(in); i += ch {
		g := float32(1 - t.depth*0.5*(1+t.lfo.next()))
		for c := range ch {
			out[i+c] = in[i+c] * g
		}
	}
}

// RingModulator multiplies the signal with a sine carrier.
type RingModulator struct {
	carrier oscillator
	fmt     format
}

func NewRingModulator(freq float64) *RingModulator {
	return &RingModulator{carrier: oscillator{freq: clamp(freq, 0, MaxRingModFrequency)}}
}

func (r *RingModulator) Prepare(sampleRate, channels int) {
	if r.fmt.update(sampleRate, channels) {
		r.carrier.reset(r.fmt.sampleRate)
	}
}

func (r *RingModulator) Apply(in, out []float32) {
	if !r.fmt.ready() {
		r.Prepare(0, 0)
	}

	ch := r.fmt.channels
	passPartial(in, out, ch)
	for i := 0; i+ch <= len(in); i += ch {
		m := float32(r.carrier.next())
		for c := range ch {
			out[i+c] = in[i+c] * m
		}
	}
}

// Flanger mixes in a copy of the signal whose delay sweeps between 0 and
// delay seconds at rate Hz.
type Flanger struct {
	depth    float64
	maxDelay float64
	lfo      oscillator
	fmt      format
	line     *delayLine
}

func NewFlanger(rate, depth, delay float64) *Flanger {
	return &Flanger{
		depth:    clamp(depth, 0, 1),
		maxDelay: clamp(delay, 0, MaxFlangerDelay),
		lfo:      oscillator{freq: clamp(rate, 0, MaxFlangerRate)},
	}
}

func (f *Flanger) Prepare(sampleRate, channels int) {
	if f.fmt.update(sampleRate, channels) {
		f.lfo.reset(f.fmt.sampleRate)
		f.line = newDelayLine(int(math.Ceil(f.maxDelay*float64(f.fmt.sampleRate)))+2, f.fmt.channels)
	}
}

func (f *Flanger) Apply(in, out []float32) {
	if !f.fmt.ready() {
		f.Prepare(0, 0)
	}

	ch := f.fmt.channels
	passPartial(in, out, ch)
	span := f.maxDelay * float64(f.fmt.sampleRate)
	norm := float32(1 / (1 + f.depth))

	for i := 0; i+ch <= len(in); i += ch {
		d := span * 0.5 * (1 + f.lfo.next())
		f.line.push(in[i : i+ch])
		for c := range ch {
			wet := f.line.tapFrac(d, c)
			out[i+c] = (in[i+c] + float32(f.depth)*wet) * norm
		}
	}
}
