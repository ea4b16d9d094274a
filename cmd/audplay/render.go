// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/bus"
	"github.com/ik5/audplay/effects"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func renderCmd(ctx context.Context, cfg config.Config, fx []effects.Effect, args []string, stderr io.Writer, log zerolog.Logger) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "output WAV file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || fs.NArg() != 1 {
		return fmt.Errorf("%w: render -o OUT.wav FILE", ErrUsage)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	b := bus.New(bus.WithLogger(log), bus.WithDefaultBuffer(cfg.BusBuffer))

	g, gctx := errgroup.WithContext(ctx)
	startMeter(gctx, g, cfg, b, log)

	start := time.Now()
	g.Go(func() error {
		defer b.Close()

		frames, err := audplay.RenderToWAV(gctx, f, fs.Arg(0), audplay.RenderOptions{
			Registry: formats.ByName(cfg.Formats),
			Effects:  fx,
			Bus:      b,
			Logger:   &log,
		})
		err = errors.Join(err, f.Close())
		if err != nil {
			return err
		}

		log.Info().
			Str("output", *out).
			Int64("frames", frames).
			Dur("took", time.Since(start)).
			Msg("rendered")

		return nil
	})

	return g.Wait()
}
