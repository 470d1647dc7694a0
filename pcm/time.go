// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"fmt"
	"math"
)

// Time is a rational timestamp: Value ticks of 1/Timescale seconds. The zero
// Time is invalid, which Timing uses to mean "unset".
type Time struct {
	Value     int64
	Timescale int32
	valid     bool
}

// InvalidTime is the unset timestamp.
var InvalidTime = Time{}

// ZeroTime is time zero at a 1-second timescale.
var ZeroTime = NewTime(0, 1)

// NewTime returns value/timescale seconds. A non-positive timescale yields
// InvalidTime.
func NewTime(value int64, timescale int32) Time {
	if timescale <= 0 {
		return InvalidTime
	}

	return Time{Value: value, Timescale: timescale, valid: true}
}

// TimeFromSeconds quantises seconds to the given timescale, rounding to the
// nearest tick.
func TimeFromSeconds(seconds float64, timescale int32) Time {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return InvalidTime
	}

	return NewTime(int64(math.Round(seconds*float64(timescale))), timescale)
}

func (t Time) IsValid() bool { return t.valid }

// Seconds converts t to floating-point seconds; NaN when invalid.
func (t Time) Seconds() float64 {
	if !t.valid {
		return math.NaN()
	}

	return float64(t.Value) / float64(t.Timescale)
}

// Rescale converts t to another timescale, rounding to the nearest tick.
func (t Time) Rescale(timescale int32) Time {
	if !t.valid || timescale <= 0 {
		return InvalidTime
	}
	if timescale == t.Timescale {
		return t
	}

	return TimeFromSeconds(t.Seconds(), timescale)
}

// Add returns t+o in the larger of the two timescales. The result is invalid
// when either operand is.
func (t Time) Add(o Time) Time {
	if !t.valid || !o.valid {
		return InvalidTime
	}
	scale := max(t.Timescale, o.Timescale)
	a, b := t.Rescale(scale), o.Rescale(scale)

	return NewTime(a.Value+b.Value, scale)
}

// Mul scales t by n ticks, keeping the timescale.
func (t Time) Mul(n int64) Time {
	if !t.valid {
		return InvalidTime
	}

	return NewTime(t.Value*n, t.Timescale)
}

func (t Time) String() string {
	if !t.valid {
		return "invalid"
	}

	return fmt.Sprintf("%d/%d", t.Value, t.Timescale)
}
