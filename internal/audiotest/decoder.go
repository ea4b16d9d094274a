// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"
	"sync"
)

// Step is one scripted NextBlock result.
type Step struct {
	Block []int16
	Err   error
}

// ScriptedDecoder replays Steps and then reports io.EOF. It satisfies
// audio.Decoder.
type ScriptedDecoder struct {
	Rate    int
	Chans   int
	OpenErr error
	Steps   []Step

	mu     sync.Mutex
	next   int
	pos    int64
	ready  bool
	opened int
	closed int
}

func (d *ScriptedDecoder) Open(r io.Reader) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opened++
	d.next, d.pos, d.ready = 0, 0, false
	if d.OpenErr != nil {
		return d.OpenErr
	}
	if r == nil {
		return errors.New("nil reader")
	}

	d.ready = d.Rate > 0 && d.Chans > 0
	return nil
}

func (d *ScriptedDecoder) NextBlock() ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.next >= len(d.Steps) {
		return nil, io.EOF
	}

	s := d.Steps[d.next]
	d.next++
	if s.Err != nil {
		return nil, s.Err
	}

	d.pos += int64(len(s.Block) / max(d.Chans, 1))
	return append([]int16(nil), s.Block...), nil
}

func (d *ScriptedDecoder) SampleRate() int { return d.Rate }
func (d *ScriptedDecoder) Channels() int   { return d.Chans }

func (d *ScriptedDecoder) IsReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ready
}

func (d *ScriptedDecoder) Position() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pos
}

func (d *ScriptedDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed++
	return nil
}

// CloseCount reports how many times Close was called.
func (d *ScriptedDecoder) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.closed
}

// Ramp returns n samples counting up from start, wrapping at the int16 range.
func Ramp(start int16, n int) []int16 {
	out := make([]int16, n)
	v := start
	for i := range out {
		out[i] = v
		v++
	}

	return out
}

// Sine16 returns frames of a full-scale-times-amp sine wave duplicated on
// every channel.
func Sine16(sampleRate, channels, frames int, frequency, amp float64) []int16 {
	out := make([]int16, frames*channels)
	for f := range frames {
		v := int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*frequency*float64(f)/float64(sampleRate)))
		for c := range channels {
			out[f*channels+c] = v
		}
	}

	return out
}
