// SPDX-License-Identifier: EPL-2.0

package pcm

import "fmt"

// RawBuffer is one byte buffer of a BufferList holding Channels interleaved
// channels.
type RawBuffer struct {
	Channels int
	Data     []byte
}

// BufferList is the byte-level view of a PCM block. Interleaved layouts use a
// single buffer, non-interleaved layouts one buffer per channel.
type BufferList []RawBuffer

// Clone deep-copies the list.
func (l BufferList) Clone() BufferList {
	out := make(BufferList, len(l))
	for i, b := range l {
		out[i] = RawBuffer{Channels: b.Channels, Data: append([]byte(nil), b.Data...)}
	}

	return out
}

// Bytes is the total payload size across all buffers.
func (l BufferList) Bytes() int {
	n := 0
	for _, b := range l {
		n += len(b.Data)
	}

	return n
}

// frames returns how many whole frames the list holds under desc, verifying
// that every buffer matches the layout.
func (l BufferList) frames(desc StreamDescription) (int, error) {
	if len(l) != desc.BufferCount() {
		return 0, fmt.Errorf("%w: %d buffers, want %d", ErrDataSize, len(l), desc.BufferCount())
	}
	bpf := desc.BytesPerFrame()
	if bpf == 0 {
		return 0, fmt.Errorf("%w: zero-width frame", ErrInvalidFormat)
	}
	frames := len(l[0].Data) / bpf
	for i, b := range l {
		if b.Channels != desc.ChannelsPerBuffer() {
			return 0, fmt.Errorf("%w: buffer %d has %d channels, want %d",
				ErrDataSize, i, b.Channels, desc.ChannelsPerBuffer())
		}
		if len(b.Data) != frames*bpf {
			return 0, fmt.Errorf("%w: buffer %d is %d bytes, want %d", ErrDataSize, i, len(b.Data), frames*bpf)
		}
	}

	return frames, nil
}
