// SPDX-License-Identifier: EPL-2.0

package rtpaudio

import "fmt"

// OpusClockRate is the RTP clock of every Opus stream (RFC 7587).
const OpusClockRate = 48000

// opusFrameSamples maps the TOC configuration number to the frame duration in
// samples at 48 kHz.
var opusFrameSamples = [32]int{
	// SILK: 10, 20, 40, 60 ms per bandwidth
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	// Hybrid: 10, 20 ms
	480, 960,
	480, 960,
	// CELT: 2.5, 5, 10, 20 ms
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
}

// maxOpusPacketSamples is the 120 ms ceiling RFC 6716 puts on one packet.
const maxOpusPacketSamples = 5760

// OpusPacketSamples reads the TOC byte (and frame count byte for code 3) of
// an Opus packet and returns the number of samples per channel it decodes
// to at 48 kHz.
func OpusPacketSamples(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, ErrEmptyPayload
	}

	toc := packet[0]
	perFrame := opusFrameSamples[toc>>3]

	var frames int
	switch toc & 0x3 {
	case 0:
		frames = 1
	case 1, 2:
		frames = 2
	default:
		if len(packet) < 2 {
			return 0, fmt.Errorf("%w: missing frame count", ErrInvalidOpusPacket)
		}
		frames = int(packet[1] & 0x3f)
	}

	total := frames * perFrame
	if frames == 0 || total > maxOpusPacketSamples {
		return 0, fmt.Errorf("%w: %d frames of %d samples", ErrInvalidOpusPacket, frames, perFrame)
	}

	return total, nil
}
