// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnsupportedFormat is returned when no decoder exists for a source
	// or the decoder rejected the stream headers.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrTransientDecode marks a block that could not be decoded. The
	// stream itself is still usable.
	ErrTransientDecode = errors.New("transient decode error")

	// ErrDecodeFatal marks a stream that can no longer be decoded.
	ErrDecodeFatal = errors.New("fatal decode error")

	// ErrDeviceInit is returned when an output device cannot be opened or
	// started.
	ErrDeviceInit = errors.New("output device initialization failed")

	ErrSeekUnsupported = errors.New("seek is not supported")
)
