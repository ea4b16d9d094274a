// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG audio with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so Channels reports 2 even for
// mono files. Blocks hold FrameSamples frames, which is one MPEG-1 layer
// III frame.
//
// A failed read is reported as audio.ErrTransientDecode and the next call
// tries again. After MaxConsecutiveErrors failures in a row the stream is
// given up with audio.ErrDecodeFatal.
package mp3
