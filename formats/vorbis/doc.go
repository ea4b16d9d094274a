// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis with github.com/jfreymuth/oggvorbis.
//
// The codec produces float samples; they are converted to 16-bit PCM with
// utils.Float32ToPCM16. The decoder is only part of formats.Extended.
package vorbis
