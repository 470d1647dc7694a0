// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
	"github.com/ik5/audmix/pcm"
)

// Example_reader demonstrates bringing a stream into a processing format.
func Example_reader() {
	// One second of a 440Hz mono tone at 44.1kHz
	source := audiotest.NewSineSource(44100, 1, 44100, 440.0)

	reader, err := audio.NewReader(source, pcm.Format{SampleRate: 16000, Channels: 2})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer reader.Close()

	blocks, frames := 0, 0
	for {
		buf, err := reader.ReadBuffer(1024)
		if buf != nil {
			blocks++
			frames += buf.FrameLength()
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	fmt.Printf("Format: %s\n", reader.Format())
	fmt.Printf("Blocks: %d, frames: %d\n", blocks, frames)
	// Output:
	// Format: 16000Hz/2ch float32 planar
	// Blocks: 16, frames: 16000
}

// Example_channelMixer demonstrates converting stereo to mono.
func Example_channelMixer() {
	stereo, _ := pcm.NewBufferFromChannels(16000, [][]float32{
		{0.2, 0.4},
		{0.6, 0.8},
	})

	mixer, _ := audio.NewChannelMixer(2, 1)
	mono, _ := mixer.Apply(stereo)

	fmt.Printf("Output channels: %d\n", mono.Format().Channels)
	fmt.Printf("Samples: %.1f\n", mono.Channel(0))
	// Output:
	// Output channels: 1
	// Samples: [0.4 0.6]
}

// Example_clock demonstrates stamping consecutive blocks.
func Example_clock() {
	clock, _ := audio.NewClock(48000)

	for range 3 {
		timing := clock.Next(960)
		fmt.Println(timing.PresentationTime)
	}
	// Output:
	// 0/48000
	// 960/48000
	// 1920/48000
}
