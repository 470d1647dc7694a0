// SPDX-License-Identifier: EPL-2.0

package rtpaudio

import (
	"fmt"
	"math"

	"github.com/pion/opus"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/pcm"
)

// Codec is the payload encoding a Depacketizer expects.
type Codec int

const (
	CodecL16 Codec = iota
	CodecOpus
)

func (c Codec) String() string {
	switch c {
	case CodecL16:
		return "L16"
	case CodecOpus:
		return "opus"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// opusDecoder is the part of opus.Decoder used here.
type opusDecoder interface {
	Decode(in, out []byte) (opus.Bandwidth, bool, error)
}

// DepacketizerConfig describes the incoming stream. SampleRate and Channels
// apply to L16 only; Opus always runs at 48 kHz and reports its own channel
// count.
type DepacketizerConfig struct {
	Codec      Codec
	SampleRate float64
	Channels   int

	// Logger receives stream events. Nil means the logrus standard logger.
	Logger *logrus.Entry
}

// Depacketizer turns the packets of one RTP stream into timed samples. The
// first packet locks the SSRC; timestamps are extended past 32-bit wrap and
// counted from that first packet.
type Depacketizer struct {
	codec Codec
	desc  pcm.StreamDescription
	opus  opusDecoder
	log   *logrus.Entry

	locked bool
	ssrc   uint32

	base   int64
	last   uint32
	cycles int64
}

func NewDepacketizer(cfg DepacketizerConfig) (*Depacketizer, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{"component": "rtpaudio", "codec": cfg.Codec.String()})

	d := &Depacketizer{codec: cfg.Codec, log: log}

	switch cfg.Codec {
	case CodecL16:
		format, err := pcm.NewFormat(cfg.SampleRate, cfg.Channels)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if format.SampleRate != math.Trunc(format.SampleRate) {
			return nil, fmt.Errorf("%w: RTP clock rate %g is not whole", ErrInvalidConfig, format.SampleRate)
		}
		d.desc = l16Description(format.SampleRate, format.Channels)
	case CodecOpus:
		dec := opus.NewDecoder()
		d.opus = &dec
		d.desc = opusDescription(1)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, cfg.Codec)
	}

	log.WithFields(logrus.Fields{
		"function": "NewDepacketizer",
		"layout":   d.desc.String(),
	}).Debug("Depacketizer created")

	return d, nil
}

func l16Description(rate float64, channels int) pcm.StreamDescription {
	return pcm.StreamDescription{
		SampleRate:       rate,
		FormatID:         pcm.FormatLinearPCM,
		Flags:            pcm.FlagSignedInteger | pcm.FlagBigEndian | pcm.FlagPacked,
		BitsPerChannel:   16,
		ChannelsPerFrame: channels,
	}
}

func opusDescription(channels int) pcm.StreamDescription {
	return pcm.StreamDescription{
		SampleRate:       OpusClockRate,
		FormatID:         pcm.FormatLinearPCM,
		Flags:            pcm.FlagSignedInteger | pcm.FlagPacked,
		BitsPerChannel:   16,
		ChannelsPerFrame: channels,
	}
}

// Description is the layout of the samples returned for L16 streams, and of
// the most recent decoded packet for Opus.
func (d *Depacketizer) Description() pcm.StreamDescription { return d.desc }

// SSRC returns the locked source, if any packet has been accepted.
func (d *Depacketizer) SSRC() (uint32, bool) { return d.ssrc, d.locked }

// Unmarshal parses raw as an RTP packet and depacketizes it.
func (d *Depacketizer) Unmarshal(raw []byte) (*pcm.TimedSample, error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("parsing RTP packet: %w", err)
	}

	return d.Depacketize(&pkt)
}

// Depacketize returns the audio carried by pkt, stamped with its extended
// timestamp on the RTP clock.
func (d *Depacketizer) Depacketize(pkt *rtp.Packet) (*pcm.TimedSample, error) {
	log := d.log.WithFields(logrus.Fields{
		"function": "Depacketize",
		"ssrc":     pkt.SSRC,
		"sequence": pkt.SequenceNumber,
	})

	if len(pkt.Payload) == 0 {
		return nil, ErrEmptyPayload
	}

	if d.locked && pkt.SSRC != d.ssrc {
		log.WithField("expected_ssrc", d.ssrc).Debug("Dropping packet from another source")
		return nil, fmt.Errorf("%w: got %d, locked to %d", ErrUnexpectedSSRC, pkt.SSRC, d.ssrc)
	}

	var (
		desc   pcm.StreamDescription
		frames int
		data   []byte
	)

	switch d.codec {
	case CodecOpus:
		samples, err := OpusPacketSamples(pkt.Payload)
		if err != nil {
			return nil, err
		}

		out := make([]byte, samples*2*2)
		bandwidth, stereo, err := d.opus.Decode(pkt.Payload, out)
		if err != nil {
			log.WithError(err).Warn("Opus decode failed")
			return nil, fmt.Errorf("%w: %w", ErrInvalidOpusPacket, err)
		}
		// the decoder upsamples its SILK output by a fixed 3, which is only
		// 48 kHz for 16 kHz wideband
		if bandwidth != opus.BandwidthWideband {
			log.WithField("bandwidth", bandwidth.String()).Warn("Opus bandwidth not supported")
			return nil, fmt.Errorf("%w: %s bandwidth", ErrInvalidOpusPacket, bandwidth)
		}

		channels := 1
		if stereo {
			channels = 2
		}
		desc, frames, data = opusDescription(channels), samples, out[:samples*channels*2]
		d.desc = desc

		log.WithFields(logrus.Fields{
			"bandwidth": bandwidth.String(),
			"stereo":    stereo,
		}).Debug("Opus packet decoded")
	default:
		frameBytes := d.desc.BytesPerFrame()
		if len(pkt.Payload)%frameBytes != 0 {
			return nil, fmt.Errorf("%w: %d bytes, %d per frame", ErrOddPayload, len(pkt.Payload), frameBytes)
		}
		desc, frames = d.desc, len(pkt.Payload)/frameBytes
		data = append([]byte(nil), pkt.Payload...)
	}

	pts := d.extend(pkt.Timestamp)
	if !d.locked {
		d.locked, d.ssrc = true, pkt.SSRC
		log.Debug("Locked to source")
	}

	timescale := int32(desc.SampleRate)
	timing := pcm.Timing{
		Duration:         pcm.NewTime(1, timescale),
		PresentationTime: pcm.NewTime(pts, timescale),
		DecodeTime:       pcm.NewTime(pts, timescale),
	}

	return pcm.NewTimedSample(desc, frames, timing, pcm.BufferList{{Channels: desc.ChannelsPerFrame, Data: data}})
}

// extend maps a 32-bit RTP timestamp onto a 64-bit timeline starting at the
// first accepted packet. Packets reordered across a wrap land before it.
func (d *Depacketizer) extend(ts uint32) int64 {
	if !d.locked {
		d.base, d.last, d.cycles = int64(ts), ts, 0
		return 0
	}

	cycles := d.cycles
	switch diff := ts - d.last; {
	case diff == 0:
	case diff < 1<<31:
		// forward
		if ts < d.last {
			cycles++
		}
		d.last, d.cycles = ts, cycles
	default:
		// backward
		if ts > d.last {
			cycles--
		}
	}

	return cycles<<32 + int64(ts) - d.base
}
