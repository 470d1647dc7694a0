// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"fmt"
	"math"
)

// MaxChannels is the largest channel count a Format accepts.
const MaxChannels = 64

// Format is the processing format of a standard buffer: 32-bit float,
// non-interleaved, at a fixed sample rate and channel count.
type Format struct {
	SampleRate float64
	Channels   int
}

// NewFormat builds a standard format, failing with ErrInvalidFormat when the
// rate is not a positive finite number or the channel count is out of range.
func NewFormat(sampleRate float64, channels int) (Format, error) {
	f := Format{SampleRate: sampleRate, Channels: channels}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}

	return f, nil
}

// Validate reports whether f can describe audio.
func (f Format) Validate() error {
	if math.IsNaN(f.SampleRate) || math.IsInf(f.SampleRate, 0) || f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > MaxChannels {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.Channels)
	}

	return nil
}

// IsZero reports whether f is the zero Format.
func (f Format) IsZero() bool { return f == Format{} }

func (f Format) String() string {
	return fmt.Sprintf("%gHz/%dch float32 planar", f.SampleRate, f.Channels)
}

// FormatID names the encoding carried by a StreamDescription.
type FormatID uint32

const (
	FormatLinearPCM FormatID = iota + 1
	FormatOpus
)

func (id FormatID) String() string {
	switch id {
	case FormatLinearPCM:
		return "lpcm"
	case FormatOpus:
		return "opus"
	default:
		return fmt.Sprintf("FormatID(%d)", uint32(id))
	}
}

// FormatFlags qualify the sample layout of a linear PCM stream.
type FormatFlags uint32

const (
	FlagFloat FormatFlags = 1 << iota
	FlagBigEndian
	FlagSignedInteger
	FlagPacked
	FlagNonInterleaved
)

// StreamDescription describes raw sample bytes: how wide a sample is, in which
// byte order and encoding, and whether channels share one buffer.
type StreamDescription struct {
	SampleRate       float64
	FormatID         FormatID
	Flags            FormatFlags
	BitsPerChannel   int
	ChannelsPerFrame int
}

// StandardDescription returns the raw layout of a standard buffer in format f:
// little-endian float32, one buffer per channel.
func StandardDescription(f Format) StreamDescription {
	return StreamDescription{
		SampleRate:       f.SampleRate,
		FormatID:         FormatLinearPCM,
		Flags:            FlagFloat | FlagPacked | FlagNonInterleaved,
		BitsPerChannel:   32,
		ChannelsPerFrame: f.Channels,
	}
}

func (d StreamDescription) IsLinearPCM() bool     { return d.FormatID == FormatLinearPCM }
func (d StreamDescription) IsBigEndian() bool     { return d.Flags&FlagBigEndian != 0 }
func (d StreamDescription) IsSignedInteger() bool { return d.Flags&FlagSignedInteger != 0 }
func (d StreamDescription) IsFloat() bool         { return d.Flags&FlagFloat != 0 }
func (d StreamDescription) IsInterleaved() bool   { return d.Flags&FlagNonInterleaved == 0 }

// BytesPerSample is the width of one sample of one channel.
func (d StreamDescription) BytesPerSample() int { return d.BitsPerChannel / 8 }

// BufferCount is the number of buffers a list in this layout holds.
func (d StreamDescription) BufferCount() int {
	if d.IsInterleaved() {
		return 1
	}

	return d.ChannelsPerFrame
}

// ChannelsPerBuffer is the number of channels interleaved in each buffer.
func (d StreamDescription) ChannelsPerBuffer() int {
	if d.IsInterleaved() {
		return d.ChannelsPerFrame
	}

	return 1
}

// BytesPerFrame is the size of one frame within a single buffer.
func (d StreamDescription) BytesPerFrame() int {
	return d.BytesPerSample() * d.ChannelsPerBuffer()
}

// Format returns the standard processing format at the same rate and
// channel count.
func (d StreamDescription) Format() (Format, error) {
	return NewFormat(d.SampleRate, d.ChannelsPerFrame)
}

// Validate checks the description is self-consistent. Non-PCM descriptions
// only need a rate and channel count.
func (d StreamDescription) Validate() error {
	if _, err := d.Format(); err != nil {
		return err
	}
	if !d.IsLinearPCM() {
		return nil
	}
	if d.BitsPerChannel <= 0 || d.BitsPerChannel%8 != 0 {
		return fmt.Errorf("%w: %d bits per channel", ErrInvalidFormat, d.BitsPerChannel)
	}
	if d.IsFloat() && d.IsSignedInteger() {
		return fmt.Errorf("%w: both float and signed integer", ErrInvalidFormat)
	}

	return nil
}

func (d StreamDescription) String() string {
	order := "le"
	if d.IsBigEndian() {
		order = "be"
	}
	kind := "u"
	switch {
	case d.IsFloat():
		kind = "f"
	case d.IsSignedInteger():
		kind = "s"
	}
	layout := "interleaved"
	if !d.IsInterleaved() {
		layout = "planar"
	}

	return fmt.Sprintf("%s %s%d%s %gHz/%dch %s",
		d.FormatID, kind, d.BitsPerChannel, order, d.SampleRate, d.ChannelsPerFrame, layout)
}
