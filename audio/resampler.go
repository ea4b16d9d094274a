// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. It works on interleaved samples and preserves the channel
// count. When downsampling a one-pole low-pass runs over the input to cut
// some of the aliasing.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window[1] and window[2] are the frames being interpolated between;
	// window[0] and window[3] are their outer neighbours.
	window [4][]float32
	filled [4]bool
	primed bool

	// Fractional distance past window[1], in source frames.
	pos float64

	frame []float32
	eof   bool

	lowpass bool
	seeded  bool
	alpha   float32
	lpState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frame:    make([]float32, channels),
		lowpass:  step > 1.0,
		alpha:    0.5,
		lpState:  make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}

	return nil
}

// readFrame pulls one frame from the source into dst. ok is false when the
// source had nothing to give.
func (r *Resampler) readFrame(dst []float32) (ok bool, err error) {
	if r.eof {
		return false, io.EOF
	}

	n, err := r.src.ReadSamples(r.frame)
	if n >= r.channels {
		copy(dst, r.frame)
		if r.lowpass {
			if !r.seeded {
				// Start the filter at the first frame so it does not ramp up from zero.
				copy(r.lpState, r.frame)
				r.seeded = true
			}
			for c := range r.channels {
				dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lpState[c]
				r.lpState[c] = dst[c]
			}
		}
		ok = true
	}

	if errors.Is(err, io.EOF) {
		r.eof = true
		return ok, io.EOF
	}
	if err != nil {
		return ok, fmt.Errorf("resampler read: %w", err)
	}

	return ok, nil
}

// prime fills the window with the first four frames, repeating the last
// frame when the source is shorter than that.
func (r *Resampler) prime() error {
	r.primed = true

	for i := range r.window {
		ok, err := r.readFrame(r.window[i])
		r.filled[i] = ok
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return err
		}

		last := i - 1
		if ok {
			last = i
		}
		if last < 0 {
			return io.EOF
		}
		for j := last + 1; j < len(r.window); j++ {
			copy(r.window[j], r.window[last])
			r.filled[j] = true
		}

		return nil
	}

	return nil
}

// advance slides the window by one source frame.
func (r *Resampler) advance() error {
	if r.eof {
		return io.EOF
	}

	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first
	copy(r.filled[:], r.filled[1:])

	ok, err := r.readFrame(r.window[3])
	r.filled[3] = ok
	if err != nil && (!errors.Is(err, io.EOF) || !ok) {
		return err
	}

	return nil
}

// ReadSamples produces interleaved samples at the target rate. len(dst)
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.filled[1] || !r.filled[2] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y0 := r.window[1][c]
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.filled[3] {
				y3 = r.window[3][c]
			}
			out[c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
