// SPDX-License-Identifier: EPL-2.0

// Package audio turns decoded streams into blocks a mixer session can take.
//
// This package contains the stream-side building blocks:
//   - Source interface for decoded input
//   - Format registry for decoder registration
//   - Clock for stamping consecutive blocks
//   - ChannelMixer for channel count mapping
//   - Resampler for sample rate conversion
//   - Reader, which chains all of the above
//
// # Source Interface
//
// A Source hands out raw PCM in whatever layout the file uses, wrapped in a
// timed sample:
//
//	type Source interface {
//	    Description() pcm.StreamDescription
//	    ReadSample(maxFrames int) (*pcm.TimedSample, error)
//	    Close() error
//	}
//
// A WAV decoder yields little-endian int16, an AIFF decoder big-endian int16
// and a Vorbis decoder float32; pcm.TimedSample.StandardBuffer normalises all
// of them.
//
// # Reading Blocks
//
// Reader converts every sample to the target processing format and cuts the
// stream into fixed-size blocks:
//
//	reader, _ := audio.NewReader(source, pcm.Format{SampleRate: 44100, Channels: 2})
//	buf, err := reader.ReadBuffer(1024)
//
// Every block has exactly the requested frame count except the last, which is
// returned together with io.EOF.
//
// # Resampling
//
// The Resampler changes the sample rate of planar blocks using cubic
// interpolation. It keeps a short tail between calls, so blocks of any size
// can be fed in:
//
//	r, _ := audio.NewResampler(44100, 16000, 2)
//	out, _ := r.Process(block)
//	tail, _ := r.Flush()
//
// A one-pole low-pass filter runs on the input when downsampling.
//
// # Channel Mixing
//
// ChannelMixer averages to mono, copies mono out to every channel, and
// otherwise folds or wraps channels by index.
//
// # Format Registry
//
// The registry allows dynamic decoder registration:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get("wav")
package audio
