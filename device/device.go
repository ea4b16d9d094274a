// SPDX-License-Identifier: EPL-2.0

package device

// Config describes the PCM stream a device plays. The format never changes
// for the lifetime of a device; a new format needs a new device.
type Config struct {
	SampleRate int
	Channels   int
	// BufferSize is the device queue length in samples (not frames).
	BufferSize int
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if c.Channels < 1 || c.Channels > 2 {
		return ErrInvalidChannels
	}

	return nil
}

// Device is a streaming sink for interleaved signed 16-bit PCM.
//
// Write is called from one goroutine at a time. Play, Pause, Stop and
// Close may be called from any goroutine, also while a Write is blocked.
type Device interface {
	Config() Config
	// Play starts or resumes output. After Stop, Play starts a fresh
	// stream on the same device.
	Play() error
	// Pause holds output. Writes block once the queue is full.
	Pause() error
	// Write queues samples and blocks while the queue is full. It returns
	// the number of samples accepted, with ErrStopped when the device was
	// stopped before everything was queued.
	Write(samples []int16) (int, error)
	// Stop drops queued samples and releases blocked writers.
	Stop() error
	// Buffered is the number of frames queued but not yet played.
	Buffered() int
	// FramesPlayed counts frames handed to the output since Play.
	FramesPlayed() int64
	Close() error
}

// Factory opens devices for a given stream format.
type Factory interface {
	// MinBufferSize is the smallest queue, in samples, the backend can
	// run with at this format.
	MinBufferSize(sampleRate, channels int) int
	Open(cfg Config) (Device, error)
}

// BufferSeconds of audio are queued between the player and the output.
const BufferSeconds = 3

// BufferSize returns the queue size in samples for a stream format: enough
// for BufferSeconds of audio, and never below what the factory needs.
func BufferSize(f Factory, sampleRate, channels int) int {
	return max(f.MinBufferSize(sampleRate, channels), sampleRate*channels*BufferSeconds)
}
