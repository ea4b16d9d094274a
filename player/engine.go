// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/bus"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/effects"
	"github.com/rs/zerolog"
)

// Engine plays one track at a time: it decodes, runs the effect chain,
// writes to an output device and publishes every block on a bus.
//
// All methods are safe for concurrent use.
type Engine struct {
	factory      device.Factory
	registry     *audio.Registry
	opener       Opener
	bus          *bus.Bus
	listener     Listener
	log          zerolog.Logger
	drainTimeout time.Duration

	chain atomic.Pointer[effects.Chain]

	// control serialises Play and Close.
	control sync.Mutex

	mu          sync.Mutex
	cond        *sync.Cond
	state       State
	paused      bool
	keepRunning bool
	track       *Track
	sampleRate  int
	channels    int
	dev         device.Device
	done        chan struct{}
	err         error
	closed      bool
}

// session is what the playback loop owns while it runs.
type session struct {
	track *Track
	dec   audio.Decoder
	dev   device.Device
	// prev is closed once the previous session has completed.
	prev <-chan struct{}
	done chan struct{}
	err  error
}

// New creates a stopped engine that opens output devices from factory.
func New(factory device.Factory, opts ...Option) *Engine {
	e := &Engine{
		factory:      factory,
		registry:     audio.NewRegistry(),
		opener:       FileOpener{},
		listener:     ListenerFuncs{},
		log:          zerolog.Nop(),
		drainTimeout: DefaultDrainTimeout,
		done:         make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	close(e.done)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SelectTrack sets the track used by the next Play. A running session is
// not affected.
func (e *Engine) SelectTrack(t *Track) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.track = t
}

// Track returns the selected track, or nil.
func (e *Engine) Track() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.track
}

// Play starts the selected track. It does nothing while a session is
// playing or paused.
//
// When the track cannot be opened or the device cannot be started, Play
// returns the error after the listener was told the session completed.
// Format problems wrap audio.ErrUnsupportedFormat and device problems wrap
// audio.ErrDeviceInit. The listener runs without engine locks held, so it
// may call Play again.
func (e *Engine) Play() error {
	failed, err := e.start()
	if failed {
		e.listener.OnCompletion()
	}

	return err
}

// start does the work of Play and reports whether a started attempt
// failed.
func (e *Engine) start() (bool, error) {
	e.control.Lock()
	defer e.control.Unlock()

	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()

		return false, ErrClosed
	case e.track == nil:
		e.mu.Unlock()

		return false, ErrNoTrackSelected
	case e.state != Stopped:
		e.mu.Unlock()

		return false, nil
	}
	track := e.track
	dev := e.dev
	e.mu.Unlock()

	dec, err := e.openDecoder(track)
	if err != nil {
		return e.fail(track, err)
	}

	rate, channels := dec.SampleRate(), dec.Channels()

	e.mu.Lock()
	e.sampleRate, e.channels = rate, channels
	e.mu.Unlock()

	if dev == nil || dev.Config().SampleRate != rate || dev.Config().Channels != channels {
		dev, err = e.replaceDevice(dev, rate, channels)
		if err != nil {
			e.closeDecoder(dec)

			return e.fail(track, fmt.Errorf("%w: %w", audio.ErrDeviceInit, err))
		}
	}

	if err := dev.Play(); err != nil {
		e.closeDecoder(dec)

		return e.fail(track, fmt.Errorf("%w: starting device: %w", audio.ErrDeviceInit, err))
	}

	s := &session{track: track, dec: dec, dev: dev, done: make(chan struct{})}

	e.mu.Lock()
	e.state = Playing
	e.paused = false
	e.keepRunning = true
	e.err = nil
	s.prev = e.done
	e.done = s.done
	e.mu.Unlock()

	e.log.Debug().
		Stringer("track", track).
		Int("rate", rate).
		Int("channels", channels).
		Msg("playback started")

	go e.run(s)

	return false, nil
}

func (e *Engine) openDecoder(track *Track) (audio.Decoder, error) {
	dec, err := e.registry.ForPath(track.URI)
	if err != nil {
		return nil, err
	}

	rc, err := e.opener.Open(track.URI)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpenTrack, track.URI, err)
	}

	if err := dec.Open(rc); err != nil {
		// the decoder owns rc from here on
		_ = dec.Close()

		return nil, fmt.Errorf("decoding %q: %w", track.URI, err)
	}

	return dec, nil
}

// replaceDevice closes old, which may be nil, and opens a device for the
// new stream format.
func (e *Engine) replaceDevice(old device.Device, rate, channels int) (device.Device, error) {
	if old != nil {
		if err := old.Close(); err != nil {
			e.log.Warn().Err(err).Msg("closing previous device")
		}
	}

	e.mu.Lock()
	e.dev = nil
	e.mu.Unlock()

	cfg := device.Config{
		SampleRate: rate,
		Channels:   channels,
		BufferSize: device.BufferSize(e.factory, rate, channels),
	}

	dev, err := e.factory.Open(cfg)
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Int("rate", rate).
		Int("channels", channels).
		Int("buffer", cfg.BufferSize).
		Msg("output device opened")

	e.mu.Lock()
	e.dev = dev
	e.mu.Unlock()

	return dev, nil
}

// fail logs a Play that could not start. The engine is still Stopped.
func (e *Engine) fail(track *Track, err error) (bool, error) {
	e.log.Error().Err(err).Stringer("track", track).Msg("playback failed to start")

	return true, err
}

func (e *Engine) closeDecoder(dec audio.Decoder) {
	if err := dec.Close(); err != nil {
		e.log.Warn().Err(err).Msg("closing decoder")
	}
}

// PausePlayback holds a playing session. It does nothing in any other
// state.
func (e *Engine) PausePlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Playing || !e.keepRunning {
		return
	}

	if err := e.dev.Pause(); err != nil {
		e.log.Warn().Err(err).Msg("pausing device")
	}
	e.paused = true
	e.state = Paused
	e.log.Debug().Msg("playback paused")
}

// ResumePlayback continues a paused session. It does nothing in any other
// state.
func (e *Engine) ResumePlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Paused || !e.keepRunning {
		return
	}

	if err := e.dev.Play(); err != nil {
		e.log.Warn().Err(err).Msg("resuming device")
	}
	e.paused = false
	e.state = Playing
	e.cond.Broadcast()
	e.log.Debug().Msg("playback resumed")
}

// StopPlayback asks the playback loop to finish after the block it is
// working on. It returns before the session has ended; use Wait for that.
func (e *Engine) StopPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Stopped || !e.keepRunning {
		return
	}
	e.keepRunning = false

	// a write may be blocked on the paused device
	if e.paused {
		if err := e.dev.Stop(); err != nil {
			e.log.Warn().Err(err).Msg("stopping device")
		}
	}
	e.cond.Broadcast()
	e.log.Debug().Msg("playback stop requested")
}

// SeekTo is not supported and always returns audio.ErrSeekUnsupported.
func (e *Engine) SeekTo(time.Duration) error {
	return audio.ErrSeekUnsupported
}

// SetAudioEffects replaces the effect chain. The playback loop picks up
// the new chain at its next block; a block is never processed by a mix of
// old and new effects. Effects must not be shared between chains that are
// in use at the same time.
func (e *Engine) SetAudioEffects(fx ...effects.Effect) {
	e.chain.Store(effects.NewChain(fx...))
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

func (e *Engine) IsPlaying() bool { return e.State() == Playing }
func (e *Engine) IsPaused() bool  { return e.State() == Paused }
func (e *Engine) IsStopped() bool { return e.State() == Stopped }

// SampleRate of the last track that was opened.
func (e *Engine) SampleRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sampleRate
}

// Channels of the last track that was opened.
func (e *Engine) Channels() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.channels
}

// PlaybackPositionFrames is how many frames the device has played in the
// current session.
func (e *Engine) PlaybackPositionFrames() int64 {
	e.mu.Lock()
	dev := e.dev
	e.mu.Unlock()

	if dev == nil {
		return 0
	}

	return dev.FramesPlayed()
}

// Err returns the error that ended the last session early, such as a
// fatal decode or device error. It is nil when the session reached the
// end of the stream or was stopped, and is reset by every successful Play.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.err
}

// Wait blocks until the current session, if any, has completed.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops playback, waits for the session to end and closes the
// output device. The engine cannot be used afterwards.
func (e *Engine) Close() error {
	e.control.Lock()
	defer e.control.Unlock()

	e.StopPlayback()
	_ = e.Wait(context.Background())

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()

		return nil
	}
	e.closed = true
	dev := e.dev
	e.dev = nil
	e.mu.Unlock()

	if dev == nil {
		return nil
	}
	if err := dev.Close(); err != nil {
		return fmt.Errorf("closing device: %w", err)
	}

	return nil
}

var _ io.Closer = (*Engine)(nil)
