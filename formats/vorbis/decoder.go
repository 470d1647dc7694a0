// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

const maxEmptyReads = 8

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// source hands out the decoder's float output as 32-bit little-endian
// interleaved samples.
type source struct {
	dec      oggReader
	desc     pcm.StreamDescription
	clock    *audio.Clock
	frameBuf []float32
	done     bool
}

func newSource(dec oggReader) (*source, error) {
	channels := dec.Channels()
	if channels < 1 || channels > pcm.MaxChannels {
		return nil, fmt.Errorf("vorbis stream: %d channels", channels)
	}

	clock, err := audio.NewClock(float64(dec.SampleRate()))
	if err != nil {
		return nil, fmt.Errorf("vorbis stream: %w", err)
	}

	return &source{
		dec: dec,
		desc: pcm.StreamDescription{
			SampleRate:       float64(dec.SampleRate()),
			FormatID:         pcm.FormatLinearPCM,
			Flags:            pcm.FlagFloat | pcm.FlagPacked,
			BitsPerChannel:   32,
			ChannelsPerFrame: channels,
		},
		clock: clock,
	}, nil
}

func (s *source) Description() pcm.StreamDescription { return s.desc }
func (s *source) Close() error                       { return nil }

func (s *source) ReadSample(maxFrames int) (*pcm.TimedSample, error) {
	if maxFrames < 1 {
		return nil, audio.ErrInvalidFrames
	}

	if s.done {
		return nil, io.EOF
	}

	channels := s.desc.ChannelsPerFrame
	want := maxFrames * channels
	if cap(s.frameBuf) < want {
		s.frameBuf = make([]float32, want)
	}
	s.frameBuf = s.frameBuf[:want]

	// Read returns a count of values, always a multiple of the channel count.
	// Page boundaries can yield empty reads.
	var n int
	for range maxEmptyReads {
		var err error
		n, err = s.dec.Read(s.frameBuf)
		if err == io.EOF {
			s.done = true
		} else if err != nil {
			return nil, err
		}

		if n > 0 || s.done {
			break
		}
	}

	frames := n / channels
	if frames == 0 {
		if s.done {
			return nil, io.EOF
		}
		return nil, io.ErrNoProgress
	}

	data := make([]byte, frames*channels*4)
	for i, v := range s.frameBuf[:frames*channels] {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}

	return pcm.NewTimedSample(s.desc, frames, s.clock.Next(frames),
		pcm.BufferList{{Channels: channels, Data: data}})
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec)
}
