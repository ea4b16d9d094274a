// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrNotMP3 is returned when no MPEG audio frame could be parsed.
	ErrNotMP3 = errors.New("not an MP3 stream")

	// ErrTooManyErrors is returned when MaxConsecutiveErrors reads in a row
	// failed.
	ErrTooManyErrors = errors.New("too many consecutive MP3 decode errors")

	ErrNotOpen = errors.New("MP3 decoder is not open")
)
