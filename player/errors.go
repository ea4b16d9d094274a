// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	ErrNoTrackSelected = errors.New("no track selected")
	ErrClosed          = errors.New("player closed")
	ErrOpenTrack       = errors.New("cannot open track")
)
