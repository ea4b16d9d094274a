// SPDX-License-Identifier: EPL-2.0

package player

// Listener is told about the start and end of playback sessions. Both
// calls come from engine goroutines and must not block for long.
type Listener interface {
	// OnStartPlayback is called once when the playback loop starts.
	OnStartPlayback()
	// OnCompletion is called exactly once for every Play that passed its
	// no-op checks, including ones that failed to start.
	OnCompletion()
}

// ListenerFuncs builds a Listener from optional functions.
type ListenerFuncs struct {
	Start      func()
	Completion func()
}

func (l ListenerFuncs) OnStartPlayback() {
	if l.Start != nil {
		l.Start()
	}
}

func (l ListenerFuncs) OnCompletion() {
	if l.Completion != nil {
		l.Completion()
	}
}
