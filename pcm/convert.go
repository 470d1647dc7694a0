// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/audmix/utils"
)

// ReorderBytes reverses the byte order of every sample in every buffer of
// list, in place. Samples are bitsPerChannel wide (16 or 32). Applying it
// twice restores the original bytes. Nothing is modified when an error is
// returned.
func ReorderBytes(list BufferList, bitsPerChannel int) error {
	width := bitsPerChannel / 8
	if bitsPerChannel%8 != 0 || (width != 2 && width != 4) {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitsPerChannel)
	}
	for i, b := range list {
		if len(b.Data)%width != 0 {
			return fmt.Errorf("%w: buffer %d is %d bytes, not a multiple of %d", ErrDataSize, i, len(b.Data), width)
		}
	}

	for _, b := range list {
		data := b.Data
		switch width {
		case 2:
			for j := 0; j < len(data); j += 2 {
				data[j], data[j+1] = data[j+1], data[j]
			}
		case 4:
			for j := 0; j < len(data); j += 4 {
				data[j], data[j+1], data[j+2], data[j+3] = data[j+3], data[j+2], data[j+1], data[j]
			}
		}
	}

	return nil
}

// Widen16To32 converts signed 16-bit little-endian samples from in (laid out
// as desc describes) into out, scaling each by 1/32768. Big-endian input must
// be passed through ReorderBytes first. The frame length of out is set to the
// number of frames converted, which is also returned.
func Widen16To32(in BufferList, desc StreamDescription, out *Buffer) (int, error) {
	if !desc.IsSignedInteger() || desc.BitsPerChannel != 16 {
		return 0, fmt.Errorf("%w: widening needs signed 16-bit, got %s", ErrUnsupportedFormat, desc)
	}

	frames, err := prepareOutput(in, desc, out)
	if err != nil {
		return 0, err
	}

	stride := desc.ChannelsPerBuffer()
	for i, b := range in {
		for k := range stride {
			dst := out.data[i*stride+k]
			for f := range frames {
				off := (f*stride + k) * 2
				dst[f] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(b.Data[off:])))
			}
		}
	}

	return frames, out.SetFrameLength(frames)
}

// copyFloat32 moves little-endian float32 samples from in into out,
// deinterleaving when needed.
func copyFloat32(in BufferList, desc StreamDescription, out *Buffer) (int, error) {
	if !desc.IsFloat() || desc.BitsPerChannel != 32 {
		return 0, fmt.Errorf("%w: float copy needs float32, got %s", ErrUnsupportedFormat, desc)
	}

	frames, err := prepareOutput(in, desc, out)
	if err != nil {
		return 0, err
	}

	stride := desc.ChannelsPerBuffer()
	for i, b := range in {
		for k := range stride {
			dst := out.data[i*stride+k]
			for f := range frames {
				off := (f*stride + k) * 4
				dst[f] = math.Float32frombits(binary.LittleEndian.Uint32(b.Data[off:]))
			}
		}
	}

	return frames, out.SetFrameLength(frames)
}

func prepareOutput(in BufferList, desc StreamDescription, out *Buffer) (int, error) {
	if out == nil {
		return 0, fmt.Errorf("%w: nil output buffer", ErrNoData)
	}
	if out.format.Channels != desc.ChannelsPerFrame {
		return 0, fmt.Errorf("%w: %d source channels into %d", ErrInvalidFormat, desc.ChannelsPerFrame, out.format.Channels)
	}

	frames, err := in.frames(desc)
	if err != nil {
		return 0, err
	}
	if frames > out.FrameCapacity() {
		return 0, fmt.Errorf("%w: %d > %d", ErrFrameLength, frames, out.FrameCapacity())
	}

	return frames, nil
}
