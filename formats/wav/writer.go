// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"math"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
)

// Writer encodes standard buffers as a 16-bit PCM WAV file. The header is
// patched with the final sizes on Close, so w must be seekable.
type Writer struct {
	mtx    sync.Mutex
	enc    *wav.Encoder
	format pcm.Format
	frames int
	closed bool
	err    error
}

// NewWriter prepares a writer for blocks of format. The sample rate must be a
// whole number of hertz.
func NewWriter(w io.WriteSeeker, format pcm.Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	if format.SampleRate != math.Trunc(format.SampleRate) || format.SampleRate > math.MaxUint32 {
		return nil, fmt.Errorf("%w: fractional sample rate %g", ErrUnsupportedWavLayout, format.SampleRate)
	}

	return &Writer{
		enc:    wav.NewEncoder(w, int(format.SampleRate), 16, format.Channels, formatPCM),
		format: format,
	}, nil
}

func (w *Writer) Format() pcm.Format { return w.format }

// Frames is the number of frames written so far.
func (w *Writer) Frames() int {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	return w.frames
}

// WriteBlock appends the valid frames of buf to the file.
func (w *Writer) WriteBlock(buf *pcm.Buffer) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	if buf == nil || buf.Format() != w.format {
		return ErrFormatMismatch
	}

	if buf.FrameLength() == 0 {
		return nil
	}

	if err := w.enc.Write(buf.AsIntBuffer()); err != nil {
		return fmt.Errorf("writing wav frames: %w", err)
	}
	w.frames += buf.FrameLength()

	return nil
}

// Close finalises the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.frames == 0 {
		// the encoder writes its header lazily
		empty := &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: w.format.Channels,
				SampleRate:  int(w.format.SampleRate),
			},
			SourceBitDepth: 16,
		}
		if err := w.enc.Write(empty); err != nil {
			return fmt.Errorf("writing wav header: %w", err)
		}
	}

	return w.enc.Close()
}

// Sink returns a mixer sink that writes every rendered block. The first write
// failure is kept and reported by Err; later blocks are dropped.
func (w *Writer) Sink() mixer.Sink {
	return mixer.SinkFunc(func(_ *mixer.Session, buf *pcm.Buffer, _ any) {
		if w.Err() != nil {
			return
		}

		if err := w.WriteBlock(buf); err != nil {
			w.mtx.Lock()
			w.err = err
			w.mtx.Unlock()
		}
	})
}

// Err reports the first error hit by the sink returned from Sink.
func (w *Writer) Err() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	return w.err
}
