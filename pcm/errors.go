// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrInvalidFormat indicates a sample rate or channel count that cannot
	// describe a PCM stream.
	ErrInvalidFormat = errors.New("invalid PCM format")

	// ErrNotLinearPCM indicates a container whose format is not linear PCM.
	// Passing one to StandardBuffer is a caller contract violation.
	ErrNotLinearPCM = errors.New("format is not linear PCM")

	// ErrUnsupportedFormat indicates a linear PCM layout the conversion layer
	// cannot turn into a standard buffer.
	ErrUnsupportedFormat = errors.New("unsupported PCM sample layout")

	// ErrUnsupportedBitDepth indicates a sample width byte reordering cannot handle.
	ErrUnsupportedBitDepth = errors.New("unsupported bits per channel")

	// ErrDataSize indicates buffers whose count or byte length does not match
	// the format and frame count.
	ErrDataSize = errors.New("buffer size does not match format")

	// ErrNoData indicates a timed sample without an attached buffer list.
	ErrNoData = errors.New("timed sample has no data")

	// ErrFrameLength indicates a frame length beyond a buffer's capacity.
	ErrFrameLength = errors.New("frame length exceeds capacity")
)
