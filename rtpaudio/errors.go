// SPDX-License-Identifier: EPL-2.0

package rtpaudio

import "errors"

var (
	ErrEmptyPayload      = errors.New("empty RTP payload")
	ErrUnexpectedSSRC    = errors.New("unexpected RTP SSRC")
	ErrOddPayload        = errors.New("L16 payload is not a whole number of frames")
	ErrInvalidOpusPacket = errors.New("invalid Opus packet")

	ErrInvalidConfig  = errors.New("invalid RTP configuration")
	ErrFormatMismatch = errors.New("block format does not match packetizer")
)
