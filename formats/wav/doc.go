// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files holding 16-bit integer PCM.
//
// Both directions sit on github.com/go-audio/wav.
//
// # Decoding
//
// Decoder returns an audio.Source whose samples keep the file's own layout:
// signed 16-bit, little-endian, interleaved. Blocks are stamped with a frame
// clock at the file's sample rate.
//
//	f, _ := os.Open("voice.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // ErrNotWavFile, ErrOnlyPCM16bitSupported, ...
//	}
//	ts, err := src.ReadSample(1024)
//
// Inputs that are not an io.ReadSeeker are read into memory first.
//
// # Encoding
//
// Writer takes standard buffers and encodes them as 16-bit PCM. Sink adapts a
// Writer to a mixer session so every rendered block lands in the file:
//
//	w, _ := wav.NewWriter(f, sess.Format())
//	sess.SetSink(w.Sink())
//	...
//	w.Close()
//
// Close patches the RIFF and data sizes and must be called once writing is
// done; it leaves the underlying file open.
package wav
