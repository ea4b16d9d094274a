// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audplay/audio"
	"github.com/rs/zerolog"
	"github.com/smallnest/ringbuffer"
)

const (
	DefaultSpeakerRate     = 48000
	DefaultSpeakerChannels = 2
	DefaultSpeakerBuffer   = 100 * time.Millisecond
)

// SpeakerOptions fixes the hardware format. oto allows a single context per
// process, so every device opened by a Speaker shares this format and
// streams of another format are converted on the fly.
type SpeakerOptions struct {
	SampleRate int
	Channels   int
	// BufferSize is the latency of the oto context.
	BufferSize time.Duration
	Logger     zerolog.Logger
}

// Speaker is a Factory for the system audio output.
type Speaker struct {
	opts SpeakerOptions

	once sync.Once
	ctx  *oto.Context
	err  error
}

// NewSpeaker prepares a speaker factory. The audio context is created on
// the first Open.
func NewSpeaker(opts SpeakerOptions) *Speaker {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSpeakerRate
	}
	if opts.Channels <= 0 {
		opts.Channels = DefaultSpeakerChannels
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultSpeakerBuffer
	}

	return &Speaker{opts: opts}
}

func (s *Speaker) init() {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   s.opts.SampleRate,
		ChannelCount: s.opts.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   s.opts.BufferSize,
	})
	if err != nil {
		s.err = fmt.Errorf("creating audio context: %w", err)

		return
	}
	<-ready

	s.ctx = ctx
	s.opts.Logger.Debug().
		Int("rate", s.opts.SampleRate).
		Int("channels", s.opts.Channels).
		Dur("buffer", s.opts.BufferSize).
		Msg("audio context ready")
}

// MinBufferSize covers two context buffers worth of samples at the stream
// format.
func (s *Speaker) MinBufferSize(sampleRate, channels int) int {
	return int(math.Ceil(2 * s.opts.BufferSize.Seconds() * float64(sampleRate*channels)))
}

func (s *Speaker) Open(cfg Config) (Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}

	cfg.BufferSize = max(cfg.BufferSize, s.MinBufferSize(cfg.SampleRate, cfg.Channels))

	d := &speakerDevice{
		cfg:         cfg,
		ctx:         s.ctx,
		log:         s.opts.Logger,
		outRate:     s.opts.SampleRate,
		outChannels: s.opts.Channels,
	}
	d.queue.frameLen = 2 * cfg.Channels

	var src audio.Source = audio.NewPCMSource(&d.queue, cfg.SampleRate, cfg.Channels)
	if cfg.SampleRate != s.opts.SampleRate {
		src = audio.NewResampler(src, s.opts.SampleRate)
	}
	d.pull = audio.NewChannelMixer(src, s.opts.Channels)

	return d, nil
}

// queue is the PCM ring between Write and the oto pull. It never blocks
// the reader: missing data reads as silence.
type queue struct {
	ring     atomic.Pointer[ringbuffer.RingBuffer]
	frameLen int
	played   atomic.Int64
}

func (q *queue) Read(p []byte) (int, error) {
	n := 0
	if rb := q.ring.Load(); rb != nil {
		avail := min(rb.Length(), len(p))
		avail -= avail % q.frameLen
		if avail > 0 {
			n, _ = rb.Read(p[:avail])
			q.played.Add(int64(n / q.frameLen))
		}
	}
	clear(p[n:])

	return len(p), nil
}

func (q *queue) frames() int {
	if rb := q.ring.Load(); rb != nil {
		return rb.Length() / q.frameLen
	}

	return 0
}

type speakerDevice struct {
	cfg         Config
	ctx         *oto.Context
	log         zerolog.Logger
	outRate     int
	outChannels int

	queue queue

	// pull runs on the oto goroutine only.
	pull audio.Source
	fbuf []float32

	// wbuf is only touched by Write.
	wbuf []byte

	mu     sync.Mutex
	player *oto.Player
	closed bool
}

func (d *speakerDevice) Config() Config { return d.cfg }

// Read feeds oto with float32 samples.
func (d *speakerDevice) Read(p []byte) (int, error) {
	frameBytes := 4 * d.outChannels
	n := (len(p) / frameBytes) * d.outChannels
	if cap(d.fbuf) < n {
		d.fbuf = make([]float32, n)
	}
	buf := d.fbuf[:n]

	got, err := d.pull.ReadSamples(buf)
	if err != nil {
		d.log.Debug().Err(err).Msg("speaker pull")
	}
	clear(buf[got:])

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	clear(p[4*n:])

	return len(p), nil
}

func (d *speakerDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	if d.queue.ring.Load() == nil {
		d.queue.played.Store(0)
		d.queue.ring.Store(ringbuffer.New(2 * d.cfg.BufferSize).SetBlocking(true))
	}
	if d.player == nil {
		d.player = d.ctx.NewPlayer(d)
	}
	d.player.Play()

	return nil
}

func (d *speakerDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.player != nil {
		d.player.Pause()
	}

	return nil
}

func (d *speakerDevice) Write(samples []int16) (int, error) {
	rb := d.queue.ring.Load()
	if rb == nil {
		return 0, ErrStopped
	}

	size := 2 * len(samples)
	if cap(d.wbuf) < size {
		d.wbuf = make([]byte, size)
	}
	buf := d.wbuf[:size]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}

	n, err := rb.Write(buf)
	if err != nil {
		if errors.Is(err, ErrStopped) || d.queue.ring.Load() != rb {
			return n / 2, ErrStopped
		}

		return n / 2, fmt.Errorf("queueing samples: %w", err)
	}

	return n / 2, nil
}

// Stop closes the ring so a blocked Write returns, and drops the player
// together with whatever it still held.
func (d *speakerDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stopLocked()
}

func (d *speakerDevice) stopLocked() error {
	if rb := d.queue.ring.Swap(nil); rb != nil {
		rb.CloseWithError(ErrStopped)
	}

	if d.player == nil {
		return nil
	}
	p := d.player
	d.player = nil
	if err := p.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}

	return nil
}

func (d *speakerDevice) Buffered() int {
	frames := d.queue.frames()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		out := d.player.BufferedSize() / (4 * d.outChannels)
		frames += out * d.cfg.SampleRate / d.outRate
	}

	return frames
}

func (d *speakerDevice) FramesPlayed() int64 { return d.queue.played.Load() }

func (d *speakerDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	return d.stopLocked()
}
