// SPDX-License-Identifier: EPL-2.0

// Package utils holds the per-sample arithmetic shared by the conversion,
// resampling and packetizing code.
package utils

// Int16Scale is the signed 16-bit full-scale magnitude. Widening divides by
// it, so -32768 maps to exactly -1.0.
const Int16Scale = 32768.0

// Int16ToFloat32 widens one signed 16-bit sample to the [-1, 1) float range.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / Int16Scale
}

// Float32ToInt16 narrows a float sample to signed 16-bit, clamping to [-1, 1].
// Negative values scale by 32768 and positive values by 32767 so both
// extremes land on the int16 limits and Int16ToFloat32 round-trips.
func Float32ToInt16(x float32) int16 {
	if x >= 1 {
		return 32767
	}
	if x <= -1 {
		return -32768
	}
	if x < 0 {
		return int16(x * Int16Scale)
	}

	return int16(x * 32767.0)
}

// CubicInterpolate evaluates a Catmull-Rom spline through four consecutive
// samples. x is the fractional position between y1 (x=0) and y2 (x=1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}
