// SPDX-License-Identifier: EPL-2.0

/*
Package player implements the playback engine.

An Engine owns at most one decoder and one output device. Play opens the
selected track, (re)creates the device when the stream format differs
from the current one and starts a playback loop on its own goroutine.
Every loop iteration decodes a block, converts it to float, runs the
effect chain, converts back, writes to the device and publishes the
decoded and processed blocks on the bus.

	Stopped --Play--> Playing --PausePlayback--> Paused
	   ^                 |  <--ResumePlayback--     |
	   +---- end of stream / StopPlayback ---------+

The transport state is kept by the engine itself and never read back from
the device. Every session that Play started ends with the listener's
OnCompletion, whether the track finished, was stopped or failed to open.
*/
package player
