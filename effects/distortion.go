// SPDX-License-Identifier: EPL-2.0

package effects

import "math"

const (
	DefaultGain = 1.0
	MaxGain     = 2.0

	DefaultBitcrushNormFreq = 0.1
	DefaultBitcrushBits     = 8
	MinBitcrushBits         = 1
	MaxBitcrushBits         = 16

	DefaultWaveshaperThreshold = 5
	MinWaveshaperThreshold     = 1
	MaxWaveshaperThreshold     = 25

	DefaultSoftClipFactor = 20
	MinSoftClipFactor     = 1
	MaxSoftClipFactor     = 100

	DefaultTubeGain = 1.5
	MaxTubeGain     = 10
	DefaultTubeMix  = 0.5
)

// Gain scales every sample by a linear factor in [0, MaxGain].
type Gain struct {
	level float32
}

func NewGain(level float64) *Gain {
	return &Gain{level: float32(clamp(level, 0, MaxGain))}
}

func (g *Gain) Level() float64 { return float64(g.level) }

func (g *Gain) Apply(in, out []float32) {
	for i, x := range in {
		out[i] = x * g.level
	}
}

// Bitcrusher reduces both resolution and sample rate. Every channel is
// held for 1/normFreq frames and quantised to bits of resolution.
type Bitcrusher struct {
	normFreq float64
	step     float32

	fmt   format
	phase float64
	held  []float32
}

func NewBitcrusher(normFreq float64, bits int) *Bitcrusher {
	bits = clamp(bits, MinBitcrushBits, MaxBitcrushBits)

	return &Bitcrusher{
		normFreq: clamp(normFreq, 0, 1),
		step:     float32(1 / math.Exp2(float64(bits-1))),
	}
}

func (b *Bitcrusher) Prepare(sampleRate, channels int) {
	if b.fmt.update(sampleRate, channels) {
		b.held = make([]float32, b.fmt.channels)
		b.phase = 1 - b.normFreq
	}
}

func (b *Bitcrusher) quantise(x float32) float32 {
	return float32(math.Round(float64(x/b.step))) * b.step
}

func (b *Bitcrusher) Apply(in, out []float32) {
	if !b.fmt.ready() {
		b.Prepare(0, 0)
	}

	ch := b.fmt.channels
	passPartial(in, out, ch)
	for i := 0; i+ch <= len(in); i += ch {
		b.phase += b.normFreq
		if b.phase >= 1 {
			b.phase -= math.Floor(b.phase)
			for c := range ch {
				b.held[c] = b.quantise(in[i+c])
			}
		}
		copy(out[i:i+ch], b.held)
	}
}

// SoftClipper compresses peaks with a scaled arctangent curve. Larger
// factors give a harder knee. Full scale input stays at full scale.
type SoftClipper struct {
	factor float64
	norm   float64
}

func NewSoftClipper(factor float64) *SoftClipper {
	factor = clamp(factor, MinSoftClipFactor, MaxSoftClipFactor)

	return &SoftClipper{factor: factor, norm: 1 / math.Atan(factor)}
}

func (s *SoftClipper) Apply(in, out []float32) {
	for i, x := range in {
		out[i] = float32(math.Atan(s.factor*float64(x)) * s.norm)
	}
}

// Waveshaper applies f(x) = x(|x|+t) / (x² + (t-1)|x| + 1), which maps
// ±1 to ±1 and bends harder as the threshold t grows.
type Waveshaper struct {
	t float32
}

func NewWaveshaper(threshold float64) *Waveshaper {
	return &Waveshaper{t: float32(clamp(threshold, MinWaveshaperThreshold, MaxWaveshaperThreshold))}
}

func (w *Waveshaper) Apply(in, out []float32) {
	for i, x := range in {
		a := x
		if a < 0 {
			a = -a
		}
		out[i] = x * (a + w.t) / (x*x + (w.t-1)*a + 1)
	}
}

// TubeDistortion blends the dry signal with an exponential saturation of
// the amplified signal.
type TubeDistortion struct {
	gain float64
	mix  float64
}

func NewTubeDistortion(gain, mix float64) *TubeDistortion {
	return &TubeDistortion{gain: clamp(gain, 0, MaxTubeGain), mix: clamp(mix, 0, 1)}
}

func (d *TubeDistortion) Apply(in, out []float32) {
	for i, x := range in {
		q := d.gain * float64(x)
		wet := math.Copysign(1-math.Exp(-math.Abs(q)), q)
		out[i] = float32(d.mix*wet + (1-d.mix)*float64(x))
	}
}
