// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes WAV files.
//
// The Decoder implements audio.Decoder on top of github.com/go-audio/wav.
// Integer PCM with 8, 16, 24 or 32 bits per sample and any channel count is
// accepted; everything is delivered as 16-bit blocks of BlockFrames frames.
// Floating point and compressed WAV payloads are rejected with an error
// wrapping both audio.ErrUnsupportedFormat and ErrOnlyPCMSupported.
//
//	dec := wav.New()
//	if err := dec.Open(file); err != nil {
//	    return err
//	}
//	block, err := dec.NextBlock()
//
// go-audio needs an io.ReadSeeker. Other readers are buffered in memory
// first.
//
// WriteWAV16 writes a complete 16-bit file in one pass to any io.Writer:
//
//	err := wav.WriteWAV16(out, 44100, 2, samples)
package wav
