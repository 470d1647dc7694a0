// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio decoding.
//
// This package uses github.com/jfreymuth/oggvorbis, a pure Go decoder.
//
// # Output Format
//
// The returned audio.Source describes:
//   - Sample format: 32-bit float, little-endian, interleaved
//   - Channels: as encoded in the stream (Vorbis allows up to 255; more than
//     pcm.MaxChannels is rejected)
//   - Sample rate: as encoded in the stream
//
// Float samples pass straight through to standard buffers, so no integer
// scaling happens on this path.
//
//	src, err := vorbis.Decoder{}.Decode(f)
//	r, _ := audio.NewReader(src, sess.Format())
package vorbis
