// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/utils"
)

// ResampleToInt16 pulls a whole source through an audio.Reader at target and
// returns the result as interleaved signed 16-bit samples.
//
// The pipeline converts the source's raw layout to float, folds or spreads
// channels to target.Channels, then resamples to target.SampleRate.
// blockFrames sets how much is converted per step.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	pcm16, err := audmix.ResampleToInt16(src, pcm.Format{SampleRate: 8000, Channels: 1}, 4096)
func ResampleToInt16(src audio.Source, target pcm.Format, blockFrames int) ([]int16, error) {
	r, err := audio.NewReader(src, target)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	// Assume ~2 seconds initially
	pcm16 := make([]int16, 0, int(target.SampleRate)*target.Channels*2)
	interleaved := make([]float32, blockFrames*target.Channels)

	for {
		buf, err := r.ReadBuffer(blockFrames)
		if buf != nil {
			n := buf.Interleave(interleaved)
			for _, x := range interleaved[:n] {
				pcm16 = append(pcm16, utils.Float32ToInt16(x))
			}
		}

		if err == io.EOF {
			return pcm16, nil
		}

		if err != nil {
			return pcm16, fmt.Errorf("%w", err)
		}
	}
}
