// SPDX-License-Identifier: EPL-2.0

// Package audplay is an audio playback engine with a real-time effect
// chain.
//
// A track is decoded block by block, each block is converted to float,
// run through an effect chain, converted back to 16-bit PCM and written
// to an output device. Alongside, the decoded and the processed blocks
// are published on a bus for meters and visualisers.
//
// # Packages
//
//   - audio: the Decoder contract, the format registry, SampleBlock, the
//     error taxonomy and the float Source pipeline (Resampler, MonoMixer,
//     ChannelMixer, PCMSource)
//   - formats and its sub packages: WAV and MP3 decoders, plus Ogg Vorbis,
//     AIFF and FLAC in the extended registry
//   - effects: the Effect contract, Chain and the effects themselves
//   - bus: the sample distribution bus
//   - device: output devices (speaker, WAV file, memory)
//   - player: the playback engine and its transport state machine
//
// # Quick Start
//
//	e := player.New(device.NewSpeaker(device.SpeakerOptions{}),
//		player.WithRegistry(formats.Default()),
//		player.WithEffects(effects.NewGain(0.8)),
//	)
//	defer e.Close()
//
//	e.SelectTrack(&player.Track{URI: "song.wav"})
//	if err := e.Play(); err != nil {
//		return err
//	}
//	return e.Wait(ctx)
//
// # Offline Rendering
//
// RenderToWAV runs the same engine against a WAV file sink, which is
// handy for applying an effect chain to a file:
//
//	out, _ := os.Create("out.wav")
//	frames, err := audplay.RenderToWAV(ctx, out, "in.mp3", audplay.RenderOptions{
//		Effects: []effects.Effect{effects.NewTremolo(5, 0.5)},
//	})
package audplay
