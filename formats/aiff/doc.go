// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// Only 16-bit integer PCM is accepted.
//
// # Output Format
//
// The returned audio.Source keeps the container's own layout:
//   - Sample format: signed 16-bit, big-endian, interleaved
//   - Channels: depends on file
//   - Sample rate: depends on file
//
// Blocks are stamped with a frame clock at the file's rate. Wrap the source in
// an audio.Reader to get standard buffers at a session's format.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF file
//   - ErrOnlyPCM16bitSupported: the file is not 16-bit
//   - ErrUnsupportedAiffLayout: no usable channel count or sample rate
package aiff
