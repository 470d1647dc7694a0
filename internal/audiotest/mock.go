// SPDX-License-Identifier: EPL-2.0

// Package audiotest generates synthetic decoded streams for tests.
package audiotest

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/utils"
)

// MockSource is a test helper that generates audio as timed raw-PCM samples.
// It implements the audio.Source interface (without importing it to avoid cycles).
// By default it emits little-endian float32 interleaved data; AsInt16 switches
// it to signed 16-bit.
type MockSource struct {
	desc         pcm.StreamDescription
	totalSamples int // Total frames to generate
	generated    int // Frames generated so far
	waveform     func(sample int, channel int) float32
	closed       bool
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of frames to generate.
// waveform is a function that generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		desc: pcm.StreamDescription{
			SampleRate:       float64(sampleRate),
			FormatID:         pcm.FormatLinearPCM,
			Flags:            pcm.FlagFloat | pcm.FlagPacked,
			BitsPerChannel:   32,
			ChannelsPerFrame: channels,
		},
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// AsInt16 switches the emitted layout to signed 16-bit interleaved, in big-endian
// byte order when bigEndian is set.
func (m *MockSource) AsInt16(bigEndian bool) *MockSource {
	m.desc.Flags = pcm.FlagSignedInteger | pcm.FlagPacked
	if bigEndian {
		m.desc.Flags |= pcm.FlagBigEndian
	}
	m.desc.BitsPerChannel = 16

	return m
}

func (m *MockSource) Description() pcm.StreamDescription { return m.desc }
func (m *MockSource) Closed() bool                       { return m.closed }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Reset resets the generated frame counter to allow re-reading.
func (m *MockSource) Reset() {
	m.generated = 0
}

// ReadSample returns up to maxFrames frames, or io.EOF once every frame has
// been handed out.
func (m *MockSource) ReadSample(maxFrames int) (*pcm.TimedSample, error) {
	if m.generated >= m.totalSamples {
		return nil, io.EOF
	}

	frames := min(maxFrames, m.totalSamples-m.generated)
	channels := m.desc.ChannelsPerFrame
	width := m.desc.BytesPerSample()
	data := make([]byte, frames*channels*width)

	for frame := range frames {
		for ch := range channels {
			v := m.waveform(m.generated+frame, ch)
			off := (frame*channels + ch) * width
			switch {
			case width == 4:
				binary.LittleEndian.PutUint32(data[off:], math.Float32bits(v))
			case m.desc.IsBigEndian():
				binary.BigEndian.PutUint16(data[off:], uint16(utils.Float32ToInt16(v)))
			default:
				binary.LittleEndian.PutUint16(data[off:], uint16(utils.Float32ToInt16(v)))
			}
		}
	}

	rate := int32(m.desc.SampleRate)
	timing := pcm.Timing{
		Duration:         pcm.NewTime(1, rate),
		PresentationTime: pcm.NewTime(int64(m.generated), rate),
		DecodeTime:       pcm.NewTime(int64(m.generated), rate),
	}
	m.generated += frames

	return pcm.NewTimedSample(m.desc, frames, timing, pcm.BufferList{{Channels: channels, Data: data}})
}
