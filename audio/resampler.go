// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/utils"
)

// Resampler converts planar blocks from one sample rate to another using cubic
// interpolation. It is streaming: each Process call returns the frames that can
// be interpolated so far and keeps the tail for the next block; Flush drains it.
// Includes basic anti-aliasing filtering when downsampling.
type Resampler struct {
	srcRate  float64
	dstRate  float64
	ratio    float64 // srcRate / dstRate - how many source samples per output sample
	channels int

	// Unconsumed source samples per channel. The interpolation window for
	// position pos is hist[c][i-1 : i+3] with i = floor(pos).
	hist    [][]float32
	pos     float64
	started bool

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(srcRate, dstRate float64, channels int) (*Resampler, error) {
	for _, rate := range []float64{srcRate, dstRate} {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
		}
	}
	if channels < 1 || channels > pcm.MaxChannels {
		return nil, fmt.Errorf("%w: %d channels", pcm.ErrInvalidFormat, channels)
	}

	ratio := srcRate / dstRate

	// Enable simple low-pass filter when downsampling
	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		// One-pole low-pass; a proper FIR would track the destination Nyquist.
		filterAlpha = 0.5
	}

	return &Resampler{
		srcRate:     srcRate,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		hist:        make([][]float32, channels),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}, nil
}

// Format is the format of the blocks Process returns.
func (r *Resampler) Format() pcm.Format {
	return pcm.Format{SampleRate: r.dstRate, Channels: r.channels}
}

// Process consumes the valid frames of src, which must be at the source rate
// with the resampler's channel count.
func (r *Resampler) Process(src *pcm.Buffer) (*pcm.Buffer, error) {
	format := src.Format()
	if format.SampleRate != r.srcRate || format.Channels != r.channels {
		return nil, fmt.Errorf("%w: resampler expects %gHz/%dch, got %s",
			pcm.ErrInvalidFormat, r.srcRate, r.channels, format)
	}
	if src.FrameLength() == 0 {
		return pcm.NewBuffer(r.Format(), 0)
	}

	for c := range r.channels {
		in := src.Channel(c)
		if !r.started {
			// Duplicate the first frame so the window has a y0 at position 1.
			r.filterState[c] = in[0]
			r.hist[c] = append(r.hist[c], in[0])
		}
		for _, v := range in {
			if r.useFilter {
				// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
				v = r.filterAlpha*v + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = v
			}
			r.hist[c] = append(r.hist[c], v)
		}
	}
	if !r.started {
		r.started = true
		r.pos = 1
	}

	return r.produce()
}

// Flush interpolates the remaining tail, holding the last frame, and resets
// the resampler for a new stream.
func (r *Resampler) Flush() (*pcm.Buffer, error) {
	if !r.started || len(r.hist[0]) == 0 {
		r.Reset()
		return pcm.NewBuffer(r.Format(), 0)
	}

	for c := range r.channels {
		last := r.hist[c][len(r.hist[c])-1]
		r.hist[c] = append(r.hist[c], last, last)
	}
	out, err := r.produce()
	r.Reset()

	return out, err
}

// Reset drops any buffered input.
func (r *Resampler) Reset() {
	for c := range r.hist {
		r.hist[c] = r.hist[c][:0]
	}
	clear(r.filterState)
	r.pos = 0
	r.started = false
}

func (r *Resampler) produce() (*pcm.Buffer, error) {
	// The window for index i needs hist[i+2].
	maxIndex := len(r.hist[0]) - 3

	count := 0
	next := r.pos
	for int(next) <= maxIndex {
		count++
		next += r.ratio
	}

	out, err := pcm.NewBuffer(r.Format(), count)
	if err != nil {
		return nil, err
	}
	if err := out.SetFrameLength(count); err != nil {
		return nil, err
	}

	for c := range r.channels {
		x := r.hist[c]
		dst := out.Channel(c)
		p := r.pos
		for k := range dst {
			i := int(p)
			dst[k] = utils.CubicInterpolate(x[i-1], x[i], x[i+1], x[i+2], float32(p-float64(i)))
			p += r.ratio
		}
	}
	r.pos = next

	// Keep one frame before the next window.
	if drop := min(int(r.pos)-1, len(r.hist[0])); drop > 0 {
		for c := range r.channels {
			r.hist[c] = append(r.hist[c][:0], r.hist[c][drop:]...)
		}
		r.pos -= float64(drop)
	}

	return out, nil
}
