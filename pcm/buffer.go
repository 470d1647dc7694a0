// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audmix/utils"
)

var _ goaudio.Buffer = (*Buffer)(nil)

// Buffer is a PCM block in the standard format: one float32 slice per channel.
// Its capacity is fixed at allocation; FrameLength marks how many frames are
// valid.
type Buffer struct {
	format      Format
	data        [][]float32
	frameLength int
}

// NewBuffer allocates a zeroed block able to hold capacity frames of format.
// The frame length starts at zero.
func NewBuffer(format Format, capacity int) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrFrameLength, capacity)
	}

	data := make([][]float32, format.Channels)
	backing := make([]float32, capacity*format.Channels)
	for c := range data {
		data[c] = backing[c*capacity : (c+1)*capacity : (c+1)*capacity]
	}

	return &Buffer{format: format, data: data}, nil
}

// NewBufferFromChannels builds a block that owns the given per-channel
// slices. Every slice must have the same length, which becomes both the
// capacity and the frame length.
func NewBufferFromChannels(sampleRate float64, channels [][]float32) (*Buffer, error) {
	format, err := NewFormat(sampleRate, len(channels))
	if err != nil {
		return nil, err
	}
	frames := len(channels[0])
	for c, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrDataSize, c, len(ch), frames)
		}
		channels[c] = ch[:frames:frames]
	}

	return &Buffer{format: format, data: channels, frameLength: frames}, nil
}

func (b *Buffer) Format() Format     { return b.format }
func (b *Buffer) FrameCapacity() int { return cap(b.data[0]) }
func (b *Buffer) FrameLength() int   { return b.frameLength }

// SetFrameLength marks the first n frames as valid.
func (b *Buffer) SetFrameLength(n int) error {
	if n < 0 || n > b.FrameCapacity() {
		return fmt.Errorf("%w: %d > %d", ErrFrameLength, n, b.FrameCapacity())
	}
	b.frameLength = n

	return nil
}

// Channel returns the valid frames of channel c. The slice aliases the block.
func (b *Buffer) Channel(c int) []float32 {
	return b.data[c][:b.frameLength]
}

// ChannelData returns the full capacity of channel c, regardless of the
// frame length.
func (b *Buffer) ChannelData(c int) []float32 {
	return b.data[c][:cap(b.data[c])]
}

// Zero silences the whole capacity without touching the frame length.
func (b *Buffer) Zero() {
	for c := range b.data {
		clear(b.ChannelData(c))
	}
}

// CopyFrom replaces the contents of b with the valid frames of src. Both
// blocks must share a format and b must be large enough.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src.format != b.format {
		return fmt.Errorf("%w: %s into %s", ErrInvalidFormat, src.format, b.format)
	}
	if src.frameLength > b.FrameCapacity() {
		return fmt.Errorf("%w: %d > %d", ErrFrameLength, src.frameLength, b.FrameCapacity())
	}
	for c := range b.data {
		copy(b.data[c][:src.frameLength], src.Channel(c))
	}
	b.frameLength = src.frameLength

	return nil
}

// Copy returns an independent block holding the valid frames of b.
func (b *Buffer) Copy() *Buffer {
	out, _ := NewBuffer(b.format, b.frameLength)
	_ = out.CopyFrom(b)

	return out
}

// Interleave writes the valid frames as interleaved float32 into dst, which
// must hold FrameLength*Channels values. It returns the values written.
func (b *Buffer) Interleave(dst []float32) int {
	channels := b.format.Channels
	n := min(b.frameLength, len(dst)/channels)
	for c := range channels {
		src := b.data[c]
		for f := range n {
			dst[f*channels+c] = src[f]
		}
	}

	return n * channels
}

// BufferList serialises the valid frames into the raw layout described by
// StandardDescription: one little-endian float32 buffer per channel.
func (b *Buffer) BufferList() BufferList {
	list := make(BufferList, len(b.data))
	for c := range b.data {
		raw := make([]byte, b.frameLength*4)
		for f, v := range b.Channel(c) {
			binary.LittleEndian.PutUint32(raw[f*4:], math.Float32bits(v))
		}
		list[c] = RawBuffer{Channels: 1, Data: raw}
	}

	return list
}

// PCMFormat implements the go-audio Buffer interface. The sample rate is
// rounded to whole hertz.
func (b *Buffer) PCMFormat() *goaudio.Format {
	return &goaudio.Format{
		NumChannels: b.format.Channels,
		SampleRate:  int(math.Round(b.format.SampleRate)),
	}
}

// NumFrames implements the go-audio Buffer interface.
func (b *Buffer) NumFrames() int { return b.frameLength }

// AsFloat32Buffer returns the valid frames as an interleaved go-audio buffer.
func (b *Buffer) AsFloat32Buffer() *goaudio.Float32Buffer {
	data := make([]float32, b.frameLength*b.format.Channels)
	b.Interleave(data)

	return &goaudio.Float32Buffer{Format: b.PCMFormat(), Data: data, SourceBitDepth: 32}
}

// AsFloatBuffer returns the valid frames as an interleaved float64 go-audio buffer.
func (b *Buffer) AsFloatBuffer() *goaudio.FloatBuffer {
	f32 := b.AsFloat32Buffer()
	data := make([]float64, len(f32.Data))
	for i, v := range f32.Data {
		data[i] = float64(v)
	}

	return &goaudio.FloatBuffer{Format: f32.Format, Data: data}
}

// AsIntBuffer returns the valid frames as interleaved signed 16-bit integers,
// ready for go-audio encoders.
func (b *Buffer) AsIntBuffer() *goaudio.IntBuffer {
	f32 := b.AsFloat32Buffer()
	data := make([]int, len(f32.Data))
	for i, v := range f32.Data {
		data[i] = int(utils.Float32ToInt16(v))
	}

	return &goaudio.IntBuffer{Format: f32.Format, Data: data, SourceBitDepth: 16}
}

// Clone implements the go-audio Buffer interface; see Copy for a typed clone.
func (b *Buffer) Clone() goaudio.Buffer { return b.Copy() }
