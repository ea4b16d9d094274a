// SPDX-License-Identifier: EPL-2.0

// Package formats assembles decoder registries from the format packages.
package formats

import (
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/flac"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
)

// Default knows the two formats every player build supports: WAV and MP3.
func Default() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(".wav", wav.New)
	r.Register(".wave", wav.New)
	r.Register(".mp3", mp3.New)

	return r
}

// Extended adds AIFF, Ogg Vorbis and FLAC to Default.
func Extended() *audio.Registry {
	r := Default()
	r.Register(".aif", aiff.New)
	r.Register(".aiff", aiff.New)
	r.Register(".ogg", vorbis.New)
	r.Register(".oga", vorbis.New)
	r.Register(".flac", flac.New)

	return r
}

// ByName returns Extended for "extended" and Default for anything else.
func ByName(name string) *audio.Registry {
	if name == "extended" {
		return Extended()
	}

	return Default()
}
