// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer maps a source onto a different channel count. Mono sources
// are copied to every output channel; wider sources are folded by taking
// output channel c from source channel c modulo the source width.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

// NewChannelMixer returns src unchanged when it already has the requested
// channel count and a MonoMixer when channels is 1.
func NewChannelMixer(src Source, channels int) Source {
	switch {
	case channels == src.Channels():
		return src
	case channels == 1:
		return NewMonoMixer(src)
	}

	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("closing channel mixer source: %w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	frames := len(dst) / m.channels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	for f := range got {
		frame := m.tmp[f*in : (f+1)*in]
		out := dst[f*m.channels : (f+1)*m.channels]
		for c := range out {
			out[c] = frame[c%in]
		}
	}

	return got * m.channels, err
}
