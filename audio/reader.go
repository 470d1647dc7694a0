// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/pcm"
)

// Reader brings a decoded Source into a fixed processing format and cuts it
// into blocks of a caller-chosen size.
//
// The pipeline per source block is:
//  1. Convert the timed sample to a standard float32 block (byte order and
//     bit depth normalised)
//  2. Map the channel count with a ChannelMixer
//  3. Resample to the target rate when the rates differ
type Reader struct {
	src       Source
	target    pcm.Format
	mixer     *ChannelMixer
	resampler *Resampler // nil when the rates already match

	queue [][]float32
	eof   bool
}

// NewReader wraps src so that every block it returns is in target format.
func NewReader(src Source, target pcm.Format) (*Reader, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	srcFormat, err := src.Description().Format()
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	mixer, err := NewChannelMixer(srcFormat.Channels, target.Channels)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		src:    src,
		target: target,
		mixer:  mixer,
		queue:  make([][]float32, target.Channels),
	}
	if srcFormat.SampleRate != target.SampleRate {
		r.resampler, err = NewResampler(srcFormat.SampleRate, target.SampleRate, target.Channels)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Reader) Format() pcm.Format { return r.target }

func (r *Reader) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadBuffer returns the next block of exactly frames frames. The last block of
// the stream may be shorter and is returned together with io.EOF; once drained
// ReadBuffer returns a nil block and io.EOF.
func (r *Reader) ReadBuffer(frames int) (*pcm.Buffer, error) {
	if frames < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrames, frames)
	}

	for len(r.queue[0]) < frames && !r.eof {
		if err := r.fill(frames); err != nil {
			return nil, err
		}
	}

	n := min(frames, len(r.queue[0]))
	if n == 0 {
		return nil, io.EOF
	}

	buf, err := pcm.NewBuffer(r.target, n)
	if err != nil {
		return nil, err
	}
	if err := buf.SetFrameLength(n); err != nil {
		return nil, err
	}
	for c := range r.queue {
		copy(buf.Channel(c), r.queue[c][:n])
		r.queue[c] = append(r.queue[c][:0], r.queue[c][n:]...)
	}

	if n < frames {
		return buf, io.EOF
	}

	return buf, nil
}

func (r *Reader) fill(frames int) error {
	ts, err := r.src.ReadSample(frames)
	if ts != nil {
		if perr := r.push(ts); perr != nil {
			return perr
		}
	}

	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
		if r.resampler != nil {
			tail, ferr := r.resampler.Flush()
			if ferr != nil {
				return fmt.Errorf("flush: %w", ferr)
			}
			r.enqueue(tail)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read: %w", err)
	case ts == nil:
		return io.ErrNoProgress
	}

	return nil
}

func (r *Reader) push(ts *pcm.TimedSample) error {
	buf, err := ts.StandardBuffer()
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	if r.mixer.In() != r.mixer.Out() {
		if buf, err = r.mixer.Apply(buf); err != nil {
			return err
		}
	}
	if r.resampler != nil {
		if buf, err = r.resampler.Process(buf); err != nil {
			return err
		}
	}
	r.enqueue(buf)

	return nil
}

func (r *Reader) enqueue(buf *pcm.Buffer) {
	for c := range r.queue {
		r.queue[c] = append(r.queue[c], buf.Channel(c)...)
	}
}
