// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = channels * 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec   mp3Reader
	desc  pcm.StreamDescription
	clock *audio.Clock
	done  bool
}

func newSource(dec mp3Reader) (*source, error) {
	rate := dec.SampleRate()

	clock, err := audio.NewClock(float64(rate))
	if err != nil {
		return nil, fmt.Errorf("mp3 stream: %w", err)
	}

	return &source{
		dec: dec,
		desc: pcm.StreamDescription{
			SampleRate:       float64(rate),
			FormatID:         pcm.FormatLinearPCM,
			Flags:            pcm.FlagSignedInteger | pcm.FlagPacked,
			BitsPerChannel:   16,
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

	// the decoder hands out whatever is left of its current frame, so keep
	// reading until the block is full
	data := make([]byte, maxFrames*bytesPerFrame)
	n, err := io.ReadFull(s.dec, data)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
	case err != nil:
		return nil, err
	}

	frames := n / bytesPerFrame
	if frames == 0 {
		s.done = true
		return nil, io.EOF
	}

	return pcm.NewTimedSample(s.desc, frames, s.clock.Next(frames),
		pcm.BufferList{{Channels: channels, Data: data[:frames*bytesPerFrame]}})
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec)
}
