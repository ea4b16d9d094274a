// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrStopped           = errors.New("device stopped")
	ErrClosed            = errors.New("device closed")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidChannels   = errors.New("only mono and stereo output is supported")
	ErrSinkInUse         = errors.New("sink already used")
)
