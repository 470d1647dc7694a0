// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/audmix/pcm"
)

// ChannelMixer maps blocks with one channel count onto another. Mono output
// is the average of every input channel. Otherwise output c is the average of
// the input channels k with k%out == c when folding down, and a copy of input
// c%in when spreading up.
type ChannelMixer struct {
	in, out int
}

func NewChannelMixer(in, out int) (*ChannelMixer, error) {
	if in < 1 || in > pcm.MaxChannels || out < 1 || out > pcm.MaxChannels {
		return nil, fmt.Errorf("%w: %d to %d channels", pcm.ErrInvalidFormat, in, out)
	}

	return &ChannelMixer{in: in, out: out}, nil
}

func (m *ChannelMixer) In() int  { return m.in }
func (m *ChannelMixer) Out() int { return m.out }

// Apply mixes src into a newly allocated block at the same sample rate.
func (m *ChannelMixer) Apply(src *pcm.Buffer) (*pcm.Buffer, error) {
	dst, err := pcm.NewBuffer(pcm.Format{SampleRate: src.Format().SampleRate, Channels: m.out}, src.FrameLength())
	if err != nil {
		return nil, err
	}
	if err := m.Mix(dst, src); err != nil {
		return nil, err
	}

	return dst, nil
}

// Mix writes the valid frames of src into dst and sets dst's frame length.
func (m *ChannelMixer) Mix(dst, src *pcm.Buffer) error {
	if src.Format().Channels != m.in || dst.Format().Channels != m.out {
		return fmt.Errorf("%w: mixer is %d->%d, got %d->%d",
			ErrInvalidDstSize, m.in, m.out, src.Format().Channels, dst.Format().Channels)
	}
	frames := src.FrameLength()
	if err := dst.SetFrameLength(frames); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDstSize, err)
	}

	switch {
	case m.in == m.out:
		for c := range m.out {
			copy(dst.Channel(c), src.Channel(c))
		}
	case m.out == 1:
		m.downmixMono(dst.Channel(0), src)
	case m.in < m.out:
		for c := range m.out {
			copy(dst.Channel(c), src.Channel(c%m.in))
		}
	default:
		m.fold(dst, src)
	}

	return nil
}

func (m *ChannelMixer) downmixMono(out []float32, src *pcm.Buffer) {
	// Unrolled for the common stereo case.
	if m.in == 2 {
		left, right := src.Channel(0), src.Channel(1)
		for f := range out {
			out[f] = (left[f] + right[f]) * 0.5
		}
		return
	}

	clear(out)
	for c := range m.in {
		for f, v := range src.Channel(c) {
			out[f] += v
		}
	}
	inv := float32(1.0) / float32(m.in)
	for f := range out {
		out[f] *= inv
	}
}

func (m *ChannelMixer) fold(dst, src *pcm.Buffer) {
	for c := range m.out {
		out := dst.Channel(c)
		clear(out)
		n := 0
		for k := c; k < m.in; k += m.out {
			for f, v := range src.Channel(k) {
				out[f] += v
			}
			n++
		}
		inv := float32(1.0) / float32(n)
		for f := range out {
			out[f] *= inv
		}
	}
}
