// SPDX-License-Identifier: EPL-2.0

// Package rtpaudio carries mixed audio over RTP and turns received RTP audio
// back into timed samples.
//
// Packets are built and parsed with github.com/pion/rtp; Opus payloads are
// decoded with github.com/pion/opus.
//
// # Sending
//
// A Packetizer cuts standard buffers into L16 packets (RFC 3551): signed
// 16-bit, network byte order, channels interleaved, whole frames per packet.
// The RTP timestamp advances by one per frame. Sender wraps a Packetizer as a
// mixer sink:
//
//	cfg, _ := rtpaudio.DefaultPacketizerConfig()
//	pk, _ := rtpaudio.NewPacketizer(sess.Format(), cfg)
//	conn, _ := net.Dial("udp", "127.0.0.1:5004")
//	sess.SetSink(rtpaudio.NewSender(conn, pk, nil))
//
// # Receiving
//
// A Depacketizer follows one stream. L16 payloads come back as big-endian
// timed samples without copying through float; Opus packets are decoded to
// little-endian signed 16-bit at 48 kHz. Only 20 ms mono wideband SILK
// packets decode; other bandwidths return ErrInvalidOpusPacket. Either way
// StandardBuffer on the result gives a float buffer ready for a mixer session.
//
//	d, _ := rtpaudio.NewDepacketizer(rtpaudio.DepacketizerConfig{
//	    Codec: rtpaudio.CodecL16, SampleRate: 44100, Channels: 2,
//	})
//	ts, err := d.Unmarshal(datagram)
//
// Packets from a second SSRC are rejected with ErrUnexpectedSSRC.
package rtpaudio
