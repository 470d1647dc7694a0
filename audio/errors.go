// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrInvalidDstSize is returned when a destination block does not have the
	// channel count or capacity an operation needs.
	ErrInvalidDstSize = errors.New("destination block does not fit the source")
	ErrInvalidRate    = errors.New("sample rate must be positive")
	ErrInvalidFrames  = errors.New("frame count must be positive")
)
