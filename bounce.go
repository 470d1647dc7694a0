// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
)

// Option configures Bounce.
type Option func(*bounceConfig)

type bounceConfig struct {
	log *logrus.Entry
}

// WithLogger sets the logger Bounce reports to. The default is the logrus
// standard logger.
func WithLogger(log *logrus.Entry) Option {
	return func(c *bounceConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Bounce mixes every input to the session's sink as fast as the engine
// renders. Each input is attached under its map key, the session is started,
// and every input still producing audio is kept at least one block ahead of
// the render position. The last short block of an input is padded with
// silence, so no frames are dropped. Rendering ends once no input has a full
// block pending; the session is stopped before returning.
//
// Bounce returns the number of blocks rendered. It stops early when ctx is
// done or a render fails, returning the blocks rendered so far with the
// error. Inputs are not closed.
func Bounce(ctx context.Context, sess *mixer.Session, inputs map[string]*audio.Reader, opts ...Option) (int, error) {
	if sess == nil {
		return 0, ErrNilSession
	}

	cfg := bounceConfig{log: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.log.WithFields(logrus.Fields{
		"component": "audmix",
		"function":  "Bounce",
		"inputs":    len(inputs),
	})

	ids := slices.Sorted(maps.Keys(inputs))
	for _, id := range ids {
		if got := inputs[id].Format(); got != sess.Format() {
			return 0, fmt.Errorf("%w: %q is %s, session is %s", ErrFormatMismatch, id, got, sess.Format())
		}
	}

	for i, id := range ids {
		if !sess.Attach(id) {
			for _, prev := range ids[:i] {
				sess.Detach(prev)
			}
			return 0, fmt.Errorf("%w: %q", ErrDuplicateInput, id)
		}
	}
	defer func() {
		for _, id := range ids {
			sess.Detach(id)
		}
	}()

	if err := sess.Start(); err != nil {
		return 0, err
	}
	defer sess.Stop()

	block := sess.RenderBlockSize()
	live := make(map[string]bool, len(ids))
	for _, id := range ids {
		live[id] = true
	}

	blocks := 0
	for {
		if err := ctx.Err(); err != nil {
			return blocks, err
		}

		ready := false
		for _, id := range ids {
			pending, err := feed(sess, id, inputs[id], block, live)
			if err != nil {
				return blocks, err
			}
			ready = ready || pending >= uint32(block)
		}

		if !ready {
			log.WithField("blocks", blocks).Debug("All inputs drained")
			return blocks, nil
		}

		if status := sess.Render(nil); status != mixer.RenderSuccess {
			return blocks, fmt.Errorf("%w: %s after %d blocks", ErrRenderFailed, status, blocks)
		}
		blocks++
	}
}

// feed tops an input up to one block ahead and reports its pending frames.
func feed(sess *mixer.Session, id string, r *audio.Reader, block int, live map[string]bool) (uint32, error) {
	pending, _ := sess.PendingFrames(id)

	for live[id] && pending < uint32(block) {
		buf, err := r.ReadBuffer(block)
		if err == io.EOF {
			live[id] = false
		} else if err != nil {
			return pending, fmt.Errorf("reading %q: %w", id, err)
		}

		if buf == nil {
			break
		}

		if buf.FrameLength() < block {
			padded, perr := pad(buf, block)
			if perr != nil {
				return pending, perr
			}
			buf = padded
		}

		if !sess.Append(id, buf) {
			return pending, fmt.Errorf("%w: append to %q refused", ErrFormatMismatch, id)
		}
		pending += uint32(buf.FrameLength())
	}

	return pending, nil
}

func pad(buf *pcm.Buffer, frames int) (*pcm.Buffer, error) {
	out, err := pcm.NewBuffer(buf.Format(), frames)
	if err != nil {
		return nil, err
	}
	if err := out.CopyFrom(buf); err != nil {
		return nil, err
	}
	if err := out.SetFrameLength(frames); err != nil {
		return nil, err
	}

	return out, nil
}
