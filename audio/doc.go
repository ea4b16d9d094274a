// SPDX-License-Identifier: EPL-2.0

// Package audio defines the contracts shared by the playback pipeline.
//
// # Decoders
//
// A Decoder turns an encoded stream into blocks of interleaved 16-bit PCM:
//
//	dec, err := registry.ForPath("/music/track.mp3")
//	if err != nil {
//	    // errors.Is(err, audio.ErrUnsupportedFormat)
//	}
//	if err := dec.Open(file); err != nil {
//	    // bad headers
//	}
//	for {
//	    block, err := dec.NextBlock()
//	    switch {
//	    case errors.Is(err, io.EOF):
//	        return
//	    case errors.Is(err, audio.ErrTransientDecode):
//	        continue
//	    case err != nil:
//	        return err
//	    }
//	    // use block
//	}
//
// Decoders are created per playback session from a Registry, which maps
// file extensions to constructors. Nothing is shared between sessions.
//
// # Sample blocks
//
// SampleBlock is the unit handed to visualisation consumers. A block is
// tagged PreFilter (decoder output) or PostFilter (what reached the output
// device) and is never modified after it has been published.
//
// # Float sources
//
// Source is a pull interface over float32 samples in [-1, 1]. The output
// devices use it to adapt PCM to what the hardware wants:
//
//	var s audio.Source = audio.NewPCMSource(pcmReader, 44100, 1)
//	s = audio.NewResampler(s, 48000)
//	s = audio.NewChannelMixer(s, 2)
//
// Resampler uses Catmull-Rom interpolation with a one-pole low-pass when
// downsampling. MonoMixer averages channels, ChannelMixer maps between any
// two layouts.
//
// Sources return io.EOF when exhausted:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // use buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
