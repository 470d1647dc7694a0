// SPDX-License-Identifier: EPL-2.0

package rtpaudio

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pion/rtp"

	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/utils"
)

// Static payload types for L16 at 44.1 kHz (RFC 3551) and the first dynamic
// type used for every other rate.
const (
	PayloadTypeL16Stereo uint8 = 10
	PayloadTypeL16Mono   uint8 = 11
	PayloadTypeDynamic   uint8 = 96
)

// DefaultMaxPayload keeps packets under a typical 1500 byte MTU.
const DefaultMaxPayload = 1200

const rtpVersion = 2

// PacketizerConfig describes the outgoing stream.
type PacketizerConfig struct {
	SSRC uint32
	// PayloadType zero picks the static L16 type when the format has one and
	// PayloadTypeDynamic otherwise.
	PayloadType uint8
	// MaxPayload caps payload bytes per packet. Zero means DefaultMaxPayload.
	MaxPayload int

	InitialSequence  uint16
	InitialTimestamp uint32
}

// DefaultPacketizerConfig returns a configuration with a random SSRC,
// sequence number and timestamp, as RFC 3550 recommends.
func DefaultPacketizerConfig() (PacketizerConfig, error) {
	var seed [10]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return PacketizerConfig{}, fmt.Errorf("generating SSRC: %w", err)
	}

	return PacketizerConfig{
		SSRC:             binary.BigEndian.Uint32(seed[0:4]),
		MaxPayload:       DefaultMaxPayload,
		InitialSequence:  binary.BigEndian.Uint16(seed[4:6]),
		InitialTimestamp: binary.BigEndian.Uint32(seed[6:10]),
	}, nil
}

// L16PayloadType is the payload type a stream of format gets by default.
func L16PayloadType(format pcm.Format) uint8 {
	if format.SampleRate == 44100 {
		switch format.Channels {
		case 1:
			return PayloadTypeL16Mono
		case 2:
			return PayloadTypeL16Stereo
		}
	}

	return PayloadTypeDynamic
}

// Packetizer splits standard buffers into L16 RTP packets: network byte
// order, channels interleaved, whole frames per packet. The RTP clock runs
// at the sample rate.
type Packetizer struct {
	format      pcm.Format
	ssrc        uint32
	payloadType uint8
	frames      int // per full packet
	sequence    uint16
	timestamp   uint32
}

func NewPacketizer(format pcm.Format, cfg PacketizerConfig) (*Packetizer, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if format.SampleRate != math.Trunc(format.SampleRate) {
		return nil, fmt.Errorf("%w: RTP clock rate %g is not whole", ErrInvalidConfig, format.SampleRate)
	}

	maxPayload := cfg.MaxPayload
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}

	frameBytes := 2 * format.Channels
	if maxPayload < frameBytes {
		return nil, fmt.Errorf("%w: max payload %d below one frame", ErrInvalidConfig, maxPayload)
	}

	if cfg.PayloadType > 127 {
		return nil, fmt.Errorf("%w: payload type %d", ErrInvalidConfig, cfg.PayloadType)
	}

	pt := cfg.PayloadType
	if pt == 0 {
		pt = L16PayloadType(format)
	}

	return &Packetizer{
		format:      format,
		ssrc:        cfg.SSRC,
		payloadType: pt,
		frames:      maxPayload / frameBytes,
		sequence:    cfg.InitialSequence,
		timestamp:   cfg.InitialTimestamp,
	}, nil
}

func (p *Packetizer) Format() pcm.Format   { return p.format }
func (p *Packetizer) SSRC() uint32         { return p.ssrc }
func (p *Packetizer) PayloadType() uint8   { return p.payloadType }
func (p *Packetizer) FramesPerPacket() int { return p.frames }

// Packetize returns the packets carrying buf's valid frames and advances the
// sequence number per packet and the timestamp per frame.
func (p *Packetizer) Packetize(buf *pcm.Buffer) ([]*rtp.Packet, error) {
	if buf == nil || buf.Format() != p.format {
		return nil, ErrFormatMismatch
	}

	total := buf.FrameLength()
	if total == 0 {
		return nil, nil
	}

	channels := p.format.Channels
	packets := make([]*rtp.Packet, 0, (total+p.frames-1)/p.frames)
	for start := 0; start < total; start += p.frames {
		n := min(p.frames, total-start)

		payload := make([]byte, n*channels*2)
		for f := range n {
			for c := range channels {
				v := utils.Float32ToInt16(buf.Channel(c)[start+f])
				binary.BigEndian.PutUint16(payload[(f*channels+c)*2:], uint16(v))
			}
		}

		packets = append(packets, &rtp.Packet{
			Header: rtp.Header{
				Version:        rtpVersion,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequence,
				Timestamp:      p.timestamp,
				SSRC:           p.ssrc,
			},
			Payload: payload,
		})

		p.sequence++
		p.timestamp += uint32(n)
	}

	return packets, nil
}
