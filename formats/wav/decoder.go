// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

const formatPCM = 1

// pcmReader is the part of wav.Decoder the source reads from, so tests can
// feed it canned integers.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source hands out the data chunk as signed 16-bit little-endian interleaved
// samples, which is what the file already holds.
type source struct {
	dec    pcmReader
	desc   pcm.StreamDescription
	clock  *audio.Clock
	intBuf *goaudio.IntBuffer
	done   bool
}

func newSource(dec pcmReader, sampleRate, channels int) (*source, error) {
	clock, err := audio.NewClock(float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	if channels < 1 || channels > pcm.MaxChannels {
		return nil, ErrUnsupportedWavLayout
	}

	return &source{
		dec: dec,
		desc: pcm.StreamDescription{
			SampleRate:       float64(sampleRate),
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

	channels := s.desc.ChannelsPerFrame
	want := maxFrames * channels
	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: channels,
				SampleRate:  int(s.desc.SampleRate),
			},
			Data:           make([]int, want),
			SourceBitDepth: 16,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err == io.EOF {
		s.done = true
	}

	frames := n / channels
	if frames == 0 {
		s.done = true
		return nil, io.EOF
	}

	data := make([]byte, frames*channels*2)
	for i, v := range s.intBuf.Data[:frames*channels] {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(int16(v)))
	}

	return pcm.NewTimedSample(s.desc, frames, s.clock.Next(frames),
		pcm.BufferList{{Channels: channels, Data: data}})
}

// Decoder reads RIFF/WAVE files holding 16-bit integer PCM.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio needs to seek between chunks
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM || dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	return newSource(dec, int(dec.SampleRate), int(dec.NumChans))
}
