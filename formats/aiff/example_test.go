// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/pcm"
)

// Example decodes an AIFF file and pulls it through a Reader at 16 kHz mono.
func Example() {
	f, err := os.Open("voice.aiff")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := aiff.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	r, err := audio.NewReader(src, pcm.Format{SampleRate: 16000, Channels: 1})
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	for {
		buf, err := r.ReadBuffer(320)
		if buf != nil {
			fmt.Println("block of", buf.FrameLength(), "frames")
		}
		if err != nil {
			break
		}
	}
}

// ExampleDecoder_Decode_errorHandling shows the error for non-AIFF input.
func ExampleDecoder_Decode_errorHandling() {
	_, err := aiff.Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVE")))
	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile))
	// Output:
	// true
}
