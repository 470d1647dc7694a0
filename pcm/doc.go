// SPDX-License-Identifier: EPL-2.0

// Package pcm is the format-conversion layer between raw PCM byte buffers and
// the standard float32 blocks a mixer session works on.
//
// # Standard Buffers
//
// A Buffer holds 32-bit float samples, one slice per channel, at a fixed
// Format (sample rate and channel count):
//
//	format, _ := pcm.NewFormat(44100, 2)
//	buf, _ := pcm.NewBuffer(format, 1024)
//	buf.SetFrameLength(1024)
//	left := buf.Channel(0)
//
// Buffer also implements the go-audio Buffer interface, so rendered blocks can
// be handed to go-audio encoders directly (AsIntBuffer, AsFloat32Buffer).
//
// # Raw Buffers
//
// A BufferList is the byte view of a block, described by a StreamDescription:
// bit depth, integer or float, byte order, interleaved or planar.
// ReorderBytes reverses the byte order of every sample in place and is its
// own inverse. Widen16To32 turns signed 16-bit samples into float32 by
// dividing by 32768, so 16384 becomes 0.5 and -32768 becomes -1.0.
//
// # Timed Samples
//
// A TimedSample wraps one block of raw data with a per-sample duration and
// presentation/decode timestamps, the unit encoders and muxers exchange:
//
//	ts, _ := pcm.ToTimedSample(buf, pcm.Timing{}, pcm.DefaultTimingDefaults())
//	raw, _ := ts.BufferList(false)
//	back, _ := ts.StandardBuffer()
//
// StandardBuffer byte-swaps big-endian data, widens signed 16-bit data and
// copies float32 data. Other layouts fail with ErrUnsupportedFormat and
// non-PCM containers with ErrNotLinearPCM; neither silently yields silence.
//
// Unset Timing fields are taken from TimingDefaults. The default duration is
// one sample period at the block's own sample rate.
package pcm
