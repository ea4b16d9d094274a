// SPDX-License-Identifier: EPL-2.0

package audplay_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/effects"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/player"
)

func ExampleRenderToWAV() {
	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	var in bytes.Buffer
	if err := wav.WriteWAV16(&in, 8000, 1, samples); err != nil {
		fmt.Println(err)
		return
	}

	dir, err := os.MkdirTemp("", "audplay")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	out, err := os.Create(filepath.Join(dir, "out.wav"))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer out.Close()

	frames, err := audplay.RenderToWAV(context.Background(), out, "in.wav", audplay.RenderOptions{
		Opener:  player.FSOpener{FS: fstest.MapFS{"in.wav": {Data: in.Bytes()}}},
		Effects: []effects.Effect{effects.NewGain(0.5), effects.NewSoftClipper(effects.DefaultSoftClipFactor)},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("rendered %d frames\n", frames)
	// Output: rendered 8000 frames
}
