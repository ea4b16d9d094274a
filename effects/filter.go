// SPDX-License-Identifier: EPL-2.0

package effects

import "math"

const (
	DefaultCombDelay = 0.005
	MaxCombDelay     = 0.1
	DefaultCombGain  = 0.5
)

// delayLine keeps the most recent frames of every channel.
type delayLine struct {
	buf      []float32
	frames   int
	channels int
	head     int // index of the newest frame
}

func newDelayLine(frames, channels int) *delayLine {
	frames = max(frames, 1)

	return &delayLine{
		buf:      make([]float32, frames*channels),
		frames:   frames,
		channels: channels,
	}
}

func (l *delayLine) push(frame []float32) {
	l.head++
	if l.head == l.frames {
		l.head = 0
	}
	copy(l.buf[l.head*l.channels:(l.head+1)*l.channels], frame)
}

// tap returns channel c as it was n frames before the newest frame.
func (l *delayLine) tap(n, c int) float32 {
	idx := l.head - n
	for idx < 0 {
		idx += l.frames
	}

	return l.buf[idx*l.channels+c]
}

// tapFrac interpolates linearly between whole frame taps.
func (l *delayLine) tapFrac(d float64, c int) float32 {
	n := int(d)
	frac := float32(d - float64(n))
	a := l.tap(n, c)
	if frac == 0 || n+1 >= l.frames {
		return a
	}

	return a + frac*(l.tap(n+1, c)-a)
}

// CombFilter is a feed-forward comb: y[n] = (x[n] + g·x[n-D]) / (1+g).
type CombFilter struct {
	delay float64
	gain  float64
	fmt   format
	line  *delayLine
	taps  int
}

func NewCombFilter(delay, gain float64) *CombFilter {
	return &CombFilter{
		delay: clamp(delay, 0, MaxCombDelay),
		gain:  clamp(gain, -1, 1),
	}
}

func (f *CombFilter) Prepare(sampleRate, channels int) {
	if f.fmt.update(sampleRate, channels) {
		f.taps = int(math.Round(f.delay * float64(f.fmt.sampleRate)))
		f.line = newDelayLine(f.taps+1, f.fmt.channels)
	}
}

func (f *CombFilter) Apply(in, out []float32) {
	if !f.fmt.ready() {
		f.Prepare(0, 0)
	}

	ch := f.fmt.channels
	passPartial(in, out, ch)
	g := float32(f.gain)
	norm := float32(1 / (1 + math.Abs(f.gain)))

	for i := 0; i+ch <= len(in); i += ch {
		f.line.push(in[i : i+ch])
		for c := range ch {
			out[i+c] = (in[i+c] + g*f.line.tap(f.taps, c)) * norm
		}
	}
}

// PeakingEQ is a second-order IIR peaking filter from the Audio EQ
// Cookbook, boosting or cutting gainDB around freq with bandwidth q.
type PeakingEQ struct {
	freq   float64
	q      float64
	gainDB float64

	fmt                format
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     []float64
}

func NewPeakingEQ(freq, q, gainDB float64) *PeakingEQ {
	return &PeakingEQ{
		freq:   math.Max(freq, 1),
		q:      math.Max(q, 0.01),
		gainDB: clamp(gainDB, -24, 24),
	}
}

func (p *PeakingEQ) Prepare(sampleRate, channels int) {
	if !p.fmt.update(sampleRate, channels) {
		return
	}

	a := math.Pow(10, p.gainDB/40)
	w0 := 2 * math.Pi * math.Min(p.freq, float64(p.fmt.sampleRate)*0.49) / float64(p.fmt.sampleRate)
	alpha := math.Sin(w0) / (2 * p.q)
	cosW0 := math.Cos(w0)
	a0 := 1 + alpha/a

	p.b0 = (1 + alpha*a) / a0
	p.b1 = -2 * cosW0 / a0
	p.b2 = (1 - alpha*a) / a0
	p.a1 = -2 * cosW0 / a0
	p.a2 = (1 - alpha/a) / a0

	p.x1 = make([]float64, p.fmt.channels)
	p.x2 = make([]float64, p.fmt.channels)
	p.y1 = make([]float64, p.fmt.channels)
	p.y2 = make([]float64, p.fmt.channels)
}

func (p *PeakingEQ) Apply(in, out []float32) {
	if !p.fmt.ready() {
		p.Prepare(0, 0)
	}

	ch := p.fmt.channels
	passPartial(in, out, ch)
	for i := 0; i+ch <= len(in); i += ch {
		for c := range ch {
			x := float64(in[i+c])
			y := p.b0*x + p.b1*p.x1[c] + p.b2*p.x2[c] - p.a1*p.y1[c] - p.a2*p.y2[c]
			p.x2[c], p.x1[c] = p.x1[c], x
			p.y2[c], p.y1[c] = p.y1[c], y
			out[i+c] = float32(y)
		}
	}
}
