// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
)

// Example writes a short stereo file to memory and decodes it again.
func Example() {
	samples := make([]int16, 2*3000)
	for i := range samples {
		samples[i] = int16(i)
	}

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, 44100, 2, samples); err != nil {
		log.Fatal(err)
	}

	dec := wav.New()
	if err := dec.Open(bytes.NewReader(buf.Bytes())); err != nil {
		log.Fatal(err)
	}
	defer dec.Close()

	fmt.Printf("%d Hz, %d channels\n", dec.SampleRate(), dec.Channels())

	for {
		block, err := dec.NextBlock()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("block frames:", len(block)/dec.Channels())
	}

	fmt.Println("position:", dec.Position())

	// Output:
	// 44100 Hz, 2 channels
	// block frames: 1024
	// block frames: 1024
	// block frames: 952
	// position: 3000
}

// ExampleDecoder_Open_errorHandling shows how a non-WAV stream is reported.
func ExampleDecoder_Open_errorHandling() {
	err := wav.New().Open(bytes.NewReader([]byte("definitely not RIFF data")))

	fmt.Println(errors.Is(err, audio.ErrUnsupportedFormat))
	fmt.Println(errors.Is(err, wav.ErrNotWavFile))

	// Output:
	// true
	// true
}
