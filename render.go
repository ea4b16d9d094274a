// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/bus"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/effects"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/player"
	"github.com/rs/zerolog"
)

// RenderOptions tunes RenderToWAV. The zero value renders local files
// with every supported format and no effects.
type RenderOptions struct {
	Registry *audio.Registry
	Opener   player.Opener
	Effects  []effects.Effect
	// Bus, when set, receives the blocks as they are rendered.
	Bus    *bus.Bus
	Logger *zerolog.Logger
}

// RenderToWAV runs the track at uri through the player and the effect
// chain and writes the result to w as a 16-bit PCM WAV file at the
// track's own sample rate and channel count. It returns the number of
// frames written.
//
// Cancelling ctx stops the render; the frames written so far still form
// a valid file. A fatal decode or device error is returned together with
// the frames written before it.
func RenderToWAV(ctx context.Context, w io.WriteSeeker, uri string, opts RenderOptions) (int64, error) {
	reg := opts.Registry
	if reg == nil {
		reg = formats.Extended()
	}

	popts := []player.Option{
		player.WithRegistry(reg),
		player.WithDrainTimeout(0),
		player.WithEffects(opts.Effects...),
	}
	if opts.Opener != nil {
		popts = append(popts, player.WithOpener(opts.Opener))
	}
	if opts.Bus != nil {
		popts = append(popts, player.WithBus(opts.Bus))
	}
	if opts.Logger != nil {
		popts = append(popts, player.WithLogger(*opts.Logger))
	}

	e := player.New(device.NewWAVFile(w), popts...)
	e.SelectTrack(&player.Track{URI: uri})

	if err := e.Play(); err != nil {
		return 0, errors.Join(fmt.Errorf("rendering %q: %w", uri, err), e.Close())
	}

	waitErr := e.Wait(ctx)
	if waitErr != nil {
		e.StopPlayback()
		_ = e.Wait(context.Background())
	}

	frames := e.PlaybackPositionFrames()
	if err := e.Err(); err != nil {
		waitErr = errors.Join(waitErr, fmt.Errorf("rendering %q: %w", uri, err))
	}
	if err := e.Close(); err != nil {
		return frames, errors.Join(waitErr, err)
	}

	return frames, waitErr
}
