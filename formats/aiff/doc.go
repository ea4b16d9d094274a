// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Signed PCM of 8, 16, 24 and 32 bits is scaled to 16 bits. go-audio needs
// an io.ReadSeeker, so other readers are loaded into memory first. The
// decoder is only part of formats.Extended.
package aiff
