// SPDX-License-Identifier: EPL-2.0

package audio

import "time"

// BlockKind tells where in the pipeline a SampleBlock was taken.
type BlockKind uint8

const (
	// PreFilter blocks hold decoder output before any effect ran.
	PreFilter BlockKind = iota + 1
	// PostFilter blocks hold what was written to the output device.
	PostFilter
)

func (k BlockKind) String() string {
	switch k {
	case PreFilter:
		return "pre-filter"
	case PostFilter:
		return "post-filter"
	default:
		return "unknown"
	}
}

// SampleBlock is one published chunk of interleaved 16-bit PCM. Receivers
// must treat Samples as read-only.
type SampleBlock struct {
	Samples    []int16
	SampleRate int
	Channels   int
	Kind       BlockKind
	// Sequence numbers blocks within one playback session, starting at 0.
	// Pre and post blocks produced from the same decoded block share it.
	Sequence uint64
}

// Frames is the number of multi-channel frames in the block.
func (b SampleBlock) Frames() int {
	if b.Channels <= 0 {
		return 0
	}

	return len(b.Samples) / b.Channels
}

// Duration is the playback time covered by the block.
func (b SampleBlock) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}

	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}
