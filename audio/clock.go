// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/ik5/audmix/pcm"
)

// Clock stamps consecutive blocks of one stream. Timestamps count frames at a
// timescale equal to the sample rate, so block n starts where block n-1 ended.
type Clock struct {
	timescale int32
	position  int64
}

func NewClock(sampleRate float64) (*Clock, error) {
	ts := math.Round(sampleRate)
	if math.IsNaN(ts) || ts < 1 || ts > math.MaxInt32 {
		return nil, ErrInvalidRate
	}

	return &Clock{timescale: int32(ts)}, nil
}

// Next returns the timing of a block of frames starting at the current
// position and moves the clock past it.
func (c *Clock) Next(frames int) pcm.Timing {
	start := pcm.NewTime(c.position, c.timescale)
	c.position += int64(frames)

	return pcm.Timing{
		Duration:         pcm.NewTime(1, c.timescale),
		PresentationTime: start,
		DecodeTime:       start,
	}
}

// Position is the number of frames stamped so far.
func (c *Clock) Position() int64 { return c.position }

func (c *Clock) Reset() { c.position = 0 }
