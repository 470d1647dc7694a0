// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
//
// # Output Format
//
// go-mp3 always produces stereo, so the returned audio.Source describes:
//   - Sample format: signed 16-bit, little-endian, interleaved
//   - Channels: 2
//   - Sample rate: depends on the MP3 file (typically 44.1kHz or 48kHz)
//
// Each ReadSample call fills as many whole frames as requested, reading
// across MP3 frame boundaries. A trailing partial frame at the end of the
// stream is dropped.
//
// To convert to mono or resample, wrap the source in an audio.Reader:
//
//	src, _ := mp3.Decoder{}.Decode(f)
//	r, _ := audio.NewReader(src, sess.Format())
//	buf, err := r.ReadBuffer(sess.MaximumFrameCount())
package mp3
