// SPDX-License-Identifier: EPL-2.0

package bus_test

import (
	"fmt"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/bus"
)

func Example() {
	b := bus.New()
	defer b.Close()

	post := b.Subscribe(bus.WithKinds(audio.PostFilter), bus.WithBuffer(8))

	b.Publish(audio.SampleBlock{Samples: []int16{1, 2}, SampleRate: 8000, Channels: 1, Kind: audio.PreFilter})
	b.Publish(audio.SampleBlock{Samples: []int16{3, 4}, SampleRate: 8000, Channels: 1, Kind: audio.PostFilter, Sequence: 1})

	blk := <-post.C
	fmt.Println(blk.Kind, blk.Sequence, blk.Samples)
	fmt.Println("dropped:", post.Dropped())
	// Output:
	// post-filter 1 [3 4]
	// dropped: 0
}
