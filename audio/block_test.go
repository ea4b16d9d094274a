// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampleBlock_FramesAndDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		block      SampleBlock
		wantFrames int
		wantDur    time.Duration
	}{
		{
			name:       "stereo block",
			block:      SampleBlock{Samples: make([]int16, 2*1152), SampleRate: 44100, Channels: 2},
			wantFrames: 1152,
			wantDur:    1152 * time.Second / 44100,
		},
		{
			name:       "one second mono",
			block:      SampleBlock{Samples: make([]int16, 8000), SampleRate: 8000, Channels: 1},
			wantFrames: 8000,
			wantDur:    time.Second,
		},
		{
			name:  "zero channels",
			block: SampleBlock{Samples: make([]int16, 10), SampleRate: 8000},
		},
		{
			name:       "zero rate",
			block:      SampleBlock{Samples: make([]int16, 10), Channels: 1},
			wantFrames: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantFrames, tt.block.Frames())
			assert.Equal(t, tt.wantDur, tt.block.Duration())
		})
	}
}

func TestBlockKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pre-filter", PreFilter.String())
	assert.Equal(t, "post-filter", PostFilter.String())
	assert.Equal(t, "unknown", BlockKind(0).String())
}
