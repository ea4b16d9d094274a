// SPDX-License-Identifier: EPL-2.0

// Command audplay plays audio files through an effect chain, or renders
// the processed result into a WAV file.
//
//	audplay [flags] play FILE...
//	audplay [flags] render -o OUT.wav FILE
//
// While playing, type p and Enter to pause or resume, n to skip to the
// next file and q to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/audplay/internal/config"
	"github.com/rs/zerolog"
)

const usage = `usage:
  audplay [flags] play FILE...
  audplay [flags] render -o OUT.wav FILE

flags:
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "audplay:", err)
		os.Exit(1)
	}
}

// options are the global flags on top of the environment config.
type options struct {
	cfg     config.Config
	effects string
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	opts := options{cfg: config.Load()}

	fs := flag.NewFlagSet("audplay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.cfg.Output, "output", opts.cfg.Output, "output for play: speaker or null")
	fs.StringVar(&opts.cfg.Formats, "formats", opts.cfg.Formats, "decoders to enable: default or extended")
	fs.StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "log level")
	fs.IntVar(&opts.cfg.DeviceRate, "device-rate", opts.cfg.DeviceRate, "speaker sample rate")
	fs.IntVar(&opts.cfg.DeviceChannels, "device-channels", opts.cfg.DeviceChannels, "speaker channel count")
	fs.DurationVar(&opts.cfg.DeviceBuffer, "device-buffer", opts.cfg.DeviceBuffer, "speaker latency")
	fs.DurationVar(&opts.cfg.DrainTimeout, "drain", opts.cfg.DrainTimeout, "how long to let queued audio play out")
	fs.IntVar(&opts.cfg.BusBuffer, "bus-buffer", opts.cfg.BusBuffer, "blocks queued per bus subscriber")
	fs.DurationVar(&opts.cfg.MeterInterval, "meter", opts.cfg.MeterInterval, "level meter interval, 0 disables it")
	fs.StringVar(&opts.effects, "fx", "", "effect chain, for example gain=0.8,eq=1000:1:6,softclip")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if err := opts.cfg.Validate(); err != nil {
		return opts, nil, err
	}

	return opts, fs.Args(), nil
}

// newLogger writes to w from the engine, bus and meter goroutines, so w
// is wrapped in a SyncWriter.
func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, _ := cfg.Level()
	out := zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), TimeFormat: time.TimeOnly}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func run(ctx context.Context, args []string, stdin io.Reader, stderr io.Writer) error {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	fx, err := parseEffects(opts.effects)
	if err != nil {
		return err
	}

	log := newLogger(opts.cfg, stderr)

	if len(rest) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch rest[0] {
	case "play":
		return playCmd(ctx, opts.cfg, fx, rest[1:], stdin, log)
	case "render":
		return renderCmd(ctx, opts.cfg, fx, rest[1:], stderr, log)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, rest[0])
	}
}
