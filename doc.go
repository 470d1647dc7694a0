// SPDX-License-Identifier: EPL-2.0

// Package audmix mixes several decoded audio streams into one, block by
// block, through a pluggable rendering engine.
//
// The work is split across subpackages:
//   - pcm: formats, standard float buffers, raw buffer lists, timed samples
//     and the byte-order and widening conversions between them
//   - audio: the Source contract for decoders, channel mixing, resampling and
//     the Reader that turns any Source into fixed-size standard buffers
//   - mixer: the Session that tracks named sources, their volumes and pending
//     frames, and drives offline renders into a Sink
//   - formats/wav, formats/aiff, formats/mp3, formats/vorbis: decoders, plus a
//     WAV writer usable as a Sink
//   - rtpaudio: L16 packetizing and L16/Opus depacketizing over RTP
//
// # Quick Start
//
// Bounce renders a set of inputs through a session as fast as possible:
//
//	sess, _ := mixer.New(engine, mixer.DefaultConfig(44100, 2))
//	w, _ := wav.NewWriter(out, sess.Format())
//	sess.SetSink(w.Sink())
//
//	src, _ := mp3.Decoder{}.Decode(f)
//	r, _ := audio.NewReader(src, sess.Format())
//
//	blocks, err := audmix.Bounce(ctx, sess, map[string]*audio.Reader{"music": r})
//	w.Close()
//
// ResampleToInt16 covers the simpler case of converting one source to
// interleaved 16-bit samples at a given format:
//
//	pcm16, err := audmix.ResampleToInt16(src, pcm.Format{SampleRate: 8000, Channels: 1}, 4096)
//
// See the individual subpackages for more detailed documentation.
package audmix
