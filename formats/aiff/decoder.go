// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder. Samples are handed out as signed 16-bit
// big-endian interleaved, the byte order AIFF stores them in.
type source struct {
	dec    aiffReader
	desc   pcm.StreamDescription
	clock  *audio.Clock
	intBuf *goaudio.IntBuffer
	done   bool
}

func newSource(dec aiffReader) (*source, error) {
	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.NumChannels > pcm.MaxChannels {
		return nil, ErrUnsupportedAiffLayout
	}

	clock, err := audio.NewClock(float64(format.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}

	return &source{
		dec: dec,
		desc: pcm.StreamDescription{
			SampleRate:       float64(format.SampleRate),
			FormatID:         pcm.FormatLinearPCM,
			Flags:            pcm.FlagSignedInteger | pcm.FlagBigEndian | pcm.FlagPacked,
			BitsPerChannel:   16,
			ChannelsPerFrame: format.NumChannels,
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

	// Resize buffer if needed
	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, want),
			Format:         s.dec.Format(),
			SourceBitDepth: 16,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	switch {
	case err == io.EOF:
		s.done = true
	case err != nil:
		return nil, err
	}

	frames := n / channels
	if frames == 0 {
		s.done = true
		return nil, io.EOF
	}

	data := make([]byte, frames*channels*2)
	for i, v := range s.intBuf.Data[:frames*channels] {
		binary.BigEndian.PutUint16(data[2*i:], uint16(int16(v)))
	}

	return pcm.NewTimedSample(s.desc, frames, s.clock.Next(frames),
		pcm.BufferList{{Channels: channels, Data: data}})
}

// Decoder reads 16-bit integer AIFF files.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	return newSource(dec)
}
