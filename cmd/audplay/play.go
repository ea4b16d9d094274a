// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ik5/audplay/bus"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/effects"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/internal/config"
	"github.com/ik5/audplay/internal/meter"
	"github.com/ik5/audplay/player"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func newFactory(cfg config.Config, log zerolog.Logger) device.Factory {
	if cfg.Output == config.OutputNull {
		return device.NewMemory(device.Discard())
	}

	return device.NewSpeaker(device.SpeakerOptions{
		SampleRate: cfg.DeviceRate,
		Channels:   cfg.DeviceChannels,
		BufferSize: cfg.DeviceBuffer,
		Logger:     log,
	})
}

// startMeter subscribes to b and logs a level reading every interval.
// The meter stops when b is closed.
func startMeter(ctx context.Context, g *errgroup.Group, cfg config.Config, b *bus.Bus, log zerolog.Logger) {
	if cfg.MeterInterval <= 0 {
		return
	}

	sub := b.Subscribe()
	m := meter.New(cfg.MeterInterval, func(r meter.Reading) {
		ev := log.Info()
		if r.Post.Clipping {
			ev = log.Warn().Bool("clipping", true)
		}
		ev.Float64("pre_rms", r.Pre.RMS).
			Float64("post_rms", r.Post.RMS).
			Float64("post_peak", r.Post.Peak).
			Int("level", r.Post.Scaled).
			Uint64("dropped", r.Dropped).
			Msg("level")
	})

	g.Go(func() error {
		err := m.Run(ctx, sub)
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})
}

func playCmd(ctx context.Context, cfg config.Config, fx []effects.Effect, files []string, stdin io.Reader, log zerolog.Logger) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: play needs at least one file", ErrUsage)
	}

	b := bus.New(bus.WithLogger(log), bus.WithDefaultBuffer(cfg.BusBuffer))

	e := player.New(newFactory(cfg, log),
		player.WithLogger(log),
		player.WithBus(b),
		player.WithRegistry(formats.ByName(cfg.Formats)),
		player.WithDrainTimeout(cfg.DrainTimeout),
		player.WithEffects(fx...),
	)

	g, gctx := errgroup.WithContext(ctx)
	startMeter(gctx, g, cfg, b, log)

	g.Go(func() error {
		defer b.Close()

		err := playAll(gctx, e, files, readControls(stdin), log)

		return errors.Join(err, e.Close())
	})

	return g.Wait()
}

// readControls turns stdin lines into commands. The channel is closed on
// EOF.
func readControls(r io.Reader) <-chan string {
	cmds := make(chan string)

	go func() {
		defer close(cmds)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if cmd := strings.ToLower(strings.TrimSpace(sc.Text())); cmd != "" {
				cmds <- cmd
			}
		}
	}()

	return cmds
}

// sessionDone closes the returned channel once the current session of e
// has completed.
func sessionDone(e *player.Engine) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		_ = e.Wait(context.Background())
		close(done)
	}()

	return done
}

func playAll(ctx context.Context, e *player.Engine, files []string, cmds <-chan string, log zerolog.Logger) error {
	for _, file := range files {
		track := &player.Track{URI: file}
		e.SelectTrack(track)

		if err := e.Play(); err != nil {
			log.Error().Err(err).Str("track", track.String()).Msg("skipping")

			continue
		}

		log.Info().
			Str("track", track.String()).
			Int("rate", e.SampleRate()).
			Int("channels", e.Channels()).
			Msg("playing")

		quit, err := control(ctx, e, sessionDone(e), cmds, log)
		if serr := e.Err(); serr != nil {
			log.Error().Err(serr).Str("track", track.String()).Msg("playback ended early")
		}
		if err != nil || quit {
			return err
		}
	}

	return nil
}

// control serves stdin commands until the session ends. It reports
// whether the user asked to quit.
func control(ctx context.Context, e *player.Engine, done <-chan struct{}, cmds <-chan string, log zerolog.Logger) (bool, error) {
	for {
		select {
		case <-done:
			return false, nil
		case <-ctx.Done():
			e.StopPlayback()
			<-done

			// An interrupt is a normal way to leave.
			return true, nil
		case cmd, ok := <-cmds:
			if !ok {
				cmds = nil

				continue
			}

			switch cmd {
			case "p", "pause":
				if e.IsPaused() {
					e.ResumePlayback()
				} else {
					e.PausePlayback()
				}
				log.Info().Stringer("state", e.State()).Msg("toggled")
			case "n", "next":
				e.StopPlayback()
			case "q", "quit":
				e.StopPlayback()
				<-done

				return true, nil
			case "s", "status":
				log.Info().
					Stringer("state", e.State()).
					Stringer("track", e.Track()).
					Int64("frames", e.PlaybackPositionFrames()).
					Msg("status")
			default:
				log.Warn().Str("command", cmd).Msg("unknown command, use p, n, s or q")
			}
		}
	}
}
