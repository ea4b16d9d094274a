// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/utils"
)

// run is the playback loop of one session.
func (e *Engine) run(s *session) {
	defer e.finish(s)

	// the previous session reports completion before this one starts
	<-s.prev
	e.listener.OnStartPlayback()

	var (
		seq     uint64
		in, out []float32
	)

	for e.waitRunnable() {
		pre, err := s.dec.NextBlock()
		switch {
		case errors.Is(err, io.EOF):
			e.log.Debug().Stringer("track", s.track).Msg("end of stream")

			return
		case errors.Is(err, audio.ErrTransientDecode):
			e.log.Warn().Err(err).Int64("frame", s.dec.Position()).Msg("skipping block")

			continue
		case err != nil:
			s.err = fmt.Errorf("decoding %q: %w", s.track.URI, err)
			e.log.Error().Err(err).Stringer("track", s.track).Msg("decoding failed")

			return
		}

		if len(pre) == 0 {
			continue
		}

		if cap(in) < len(pre) {
			in = make([]float32, len(pre))
			out = make([]float32, len(pre))
		}
		in, out = in[:len(pre)], out[:len(pre)]

		post := e.process(s, pre, in, out)

		n, err := s.dev.Write(post)
		if err != nil {
			if !errors.Is(err, device.ErrStopped) || e.running() {
				s.err = fmt.Errorf("writing to device: %w", err)
				e.log.Error().Err(err).Msg("device write failed")
			}

			return
		}
		if n < len(post) {
			e.log.Debug().Int("want", len(post)).Int("wrote", n).Msg("short write")
		}

		e.publish(s, pre, post, seq)
		seq++
	}
}

// waitRunnable parks the loop while paused and reports whether it should
// process another block.
func (e *Engine) waitRunnable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.paused && e.keepRunning {
		e.cond.Wait()
	}

	return e.keepRunning
}

func (e *Engine) running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.keepRunning
}

// process runs the current effect chain over one decoded block and returns
// a new block with the result.
func (e *Engine) process(s *session, pre []int16, in, out []float32) []int16 {
	chain := e.chain.Load()
	chain.Prepare(s.dec.SampleRate(), s.dec.Channels())

	utils.PCM16ToFloat32(in, pre)
	chain.Apply(in, out)

	post := make([]int16, len(pre))
	utils.Float32ToPCM16(post, out)

	return post
}

func (e *Engine) publish(s *session, pre, post []int16, seq uint64) {
	if e.bus == nil {
		return
	}

	blk := audio.SampleBlock{
		Samples:    pre,
		SampleRate: s.dec.SampleRate(),
		Channels:   s.dec.Channels(),
		Kind:       audio.PreFilter,
		Sequence:   seq,
	}
	e.bus.Publish(blk)

	blk.Samples = post
	blk.Kind = audio.PostFilter
	e.bus.Publish(blk)
}

// finish ends a session on every exit path of run.
func (e *Engine) finish(s *session) {
	// transport calls are no-ops from here on
	e.mu.Lock()
	e.keepRunning = false
	e.mu.Unlock()

	e.drain(s.dev)

	if err := s.dev.Stop(); err != nil {
		e.log.Warn().Err(err).Msg("stopping device")
	}
	e.closeDecoder(s.dec)

	e.mu.Lock()
	e.state = Stopped
	e.paused = false
	e.err = s.err
	e.mu.Unlock()

	e.log.Debug().Stringer("track", s.track).Msg("playback stopped")

	e.listener.OnCompletion()
	close(s.done)
}

// drain waits for the device to play out what it has queued, for at most
// the drain timeout.
func (e *Engine) drain(dev device.Device) {
	if e.drainTimeout == 0 || dev.Buffered() == 0 {
		return
	}

	deadline := time.NewTimer(e.drainTimeout)
	defer deadline.Stop()

	tick := time.NewTicker(drainPoll)
	defer tick.Stop()

	for dev.Buffered() > 0 {
		select {
		case <-deadline.C:
			e.log.Debug().Int("frames", dev.Buffered()).Msg("drain timed out")

			return
		case <-tick.C:
		}
	}
}
