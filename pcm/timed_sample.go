// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"fmt"
	"math"
)

// Timing carries the per-sample duration and the presentation and decode
// timestamps of a TimedSample. Invalid fields are unset.
type Timing struct {
	Duration         Time
	PresentationTime Time
	DecodeTime       Time
}

// TimingDefaults fills the Timing fields a caller leaves unset when wrapping a
// block with ToTimedSample.
type TimingDefaults struct {
	// SampleRate is the base rate of the default duration, one sample period.
	// Zero means the block's own sample rate.
	SampleRate float64
	// PresentationTime and DecodeTime are used as given.
	PresentationTime Time
	DecodeTime       Time
}

// DefaultTimingDefaults returns a one-sample duration at the block's own rate
// and zero presentation and decode times.
func DefaultTimingDefaults() TimingDefaults {
	return TimingDefaults{
		PresentationTime: ZeroTime,
		DecodeTime:       ZeroTime,
	}
}

// SamplePeriod is the duration of one sample at rate.
func SamplePeriod(rate float64) Time {
	if rate == math.Trunc(rate) && rate > 0 && rate <= math.MaxInt32 {
		return NewTime(1, int32(rate))
	}

	return TimeFromSeconds(1/rate, 1_000_000_000)
}

func (d TimingDefaults) apply(t Timing, blockRate float64) Timing {
	if !t.Duration.IsValid() {
		rate := d.SampleRate
		if rate <= 0 {
			rate = blockRate
		}
		t.Duration = SamplePeriod(rate)
	}
	if !t.PresentationTime.IsValid() {
		t.PresentationTime = d.PresentationTime
	}
	if !t.DecodeTime.IsValid() {
		t.DecodeTime = d.DecodeTime
	}

	return t
}

// TimedSample is a timestamped container around one block of raw samples,
// the shape encoders and muxers exchange.
type TimedSample struct {
	desc       StreamDescription
	numSamples int
	timing     Timing
	data       BufferList
}

// NewTimedSample wraps data, numSamples frames laid out as desc. The container
// takes ownership of data. For linear PCM the buffers must match desc and
// numSamples exactly; a nil list creates a container without data.
func NewTimedSample(desc StreamDescription, numSamples int, timing Timing, data BufferList) (*TimedSample, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if numSamples < 0 {
		return nil, fmt.Errorf("%w: %d samples", ErrDataSize, numSamples)
	}
	if data != nil && desc.IsLinearPCM() {
		frames, err := data.frames(desc)
		if err != nil {
			return nil, err
		}
		if frames != numSamples {
			return nil, fmt.Errorf("%w: data holds %d frames, want %d", ErrDataSize, frames, numSamples)
		}
	}

	return &TimedSample{desc: desc, numSamples: numSamples, timing: timing, data: data}, nil
}

// ToTimedSample wraps the valid frames of buf in a container described by the
// block's own standard format. Timing fields left unset come from defaults.
func ToTimedSample(buf *Buffer, timing Timing, defaults TimingDefaults) (*TimedSample, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrNoData)
	}

	timing = defaults.apply(timing, buf.format.SampleRate)

	return NewTimedSample(StandardDescription(buf.format), buf.frameLength, timing, buf.BufferList())
}

func (s *TimedSample) Description() StreamDescription { return s.desc }
func (s *TimedSample) NumSamples() int                { return s.numSamples }
func (s *TimedSample) Timing() Timing                 { return s.timing }

// Duration is the time covered by the whole container: the per-sample
// duration times the sample count.
func (s *TimedSample) Duration() Time {
	return s.timing.Duration.Mul(int64(s.numSamples))
}

// BufferList returns a copy of the raw buffers backing s, with every sample
// byte-reversed when reorder is set. The container itself is never modified.
func (s *TimedSample) BufferList(reorder bool) (BufferList, error) {
	if s.data == nil {
		return nil, ErrNoData
	}

	list := s.data.Clone()
	if reorder {
		if err := ReorderBytes(list, s.desc.BitsPerChannel); err != nil {
			return nil, fmt.Errorf("reorder: %w", err)
		}
	}

	return list, nil
}

// StandardBuffer converts s into a standard float32 planar block sized to its
// sample count. s must be linear PCM (ErrNotLinearPCM otherwise). Big-endian
// data is byte-reversed first; signed 16-bit data is widened and float32 data
// is copied. Any other layout fails with ErrUnsupportedFormat.
func (s *TimedSample) StandardBuffer() (*Buffer, error) {
	desc := s.desc
	if !desc.IsLinearPCM() {
		return nil, fmt.Errorf("%w: %s", ErrNotLinearPCM, desc.FormatID)
	}

	var convert func(BufferList, StreamDescription, *Buffer) (int, error)
	switch {
	case desc.IsSignedInteger() && desc.BitsPerChannel == 16:
		convert = Widen16To32
	case desc.IsFloat() && desc.BitsPerChannel == 32:
		convert = copyFloat32
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, desc)
	}

	list, err := s.BufferList(desc.IsBigEndian())
	if err != nil {
		return nil, err
	}

	format, err := desc.Format()
	if err != nil {
		return nil, err
	}
	out, err := NewBuffer(format, s.numSamples)
	if err != nil {
		return nil, err
	}
	if err := out.SetFrameLength(out.FrameCapacity()); err != nil {
		return nil, err
	}

	if _, err := convert(list, desc, out); err != nil {
		return nil, err
	}

	return out, nil
}
