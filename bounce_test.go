// SPDX-License-Identifier: EPL-2.0

package audmix_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
	"github.com/ik5/audmix/internal/softengine"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
)

const blockFrames = 1024

func quietLogger() *logrus.Entry {
	log, _ := logtest.NewNullLogger()
	return logrus.NewEntry(log)
}

func newSession(t *testing.T) (*mixer.Session, *softengine.Engine) {
	t.Helper()

	engine := softengine.New(softengine.WithLogger(quietLogger()))
	cfg := mixer.DefaultConfig(44100, 2)
	cfg.MaximumFrameCount = blockFrames
	cfg.Logger = quietLogger()

	sess, err := mixer.New(engine, cfg)
	require.NoError(t, err)

	return sess, engine
}

func constantInput(t *testing.T, frames int, value float32) *audio.Reader {
	t.Helper()

	r, err := audio.NewReader(audiotest.NewConstantSource(44100, 2, frames, value), pcm.Format{SampleRate: 44100, Channels: 2})
	require.NoError(t, err)

	return r
}

// recorder keeps a copy of every rendered block.
type recorder struct {
	blocks []*pcm.Buffer
}

func (r *recorder) OnRendered(_ *mixer.Session, buf *pcm.Buffer, _ any) {
	r.blocks = append(r.blocks, buf.Copy())
}

func TestBounce_MixesUntilDrained(t *testing.T) {
	t.Parallel()

	sess, engine := newSession(t)
	rec := &recorder{}
	sess.SetSink(rec)

	n, err := audmix.Bounce(context.Background(), sess, map[string]*audio.Reader{
		"long":  constantInput(t, 3000, 0.25),
		"short": constantInput(t, 2*blockFrames, 0.5),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, 3, engine.Renders())
	require.Len(t, rec.blocks, 3)

	for _, b := range rec.blocks[:2] {
		for c := range 2 {
			for _, v := range b.Channel(c) {
				assert.InDelta(t, 0.75, v, 1e-6)
			}
		}
	}

	// 3000 - 2048 frames of the long input, then padding
	last := rec.blocks[2].Channel(0)
	assert.InDelta(t, 0.25, last[951], 1e-6)
	assert.InDelta(t, 0.0, last[952], 1e-6)
	assert.InDelta(t, 0.0, last[blockFrames-1], 1e-6)

	assert.Equal(t, mixer.StateStopped, sess.State())
	assert.Zero(t, sess.Len(), "inputs are detached afterwards")
}

func TestBounce_NoInputs(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t)

	n, err := audmix.Bounce(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBounce_WithLogger(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	n, err := audmix.Bounce(context.Background(), sess, map[string]*audio.Reader{
		"a": constantInput(t, blockFrames, 0.5),
	}, audmix.WithLogger(logrus.NewEntry(logger)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "All inputs drained", entry.Message)
	assert.Equal(t, "audmix", entry.Data["component"])
	assert.Equal(t, 1, entry.Data["blocks"])
}

func TestBounce_FormatMismatch(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t)
	r, err := audio.NewReader(audiotest.NewSilentSource(8000, 1, 100), pcm.Format{SampleRate: 8000, Channels: 1})
	require.NoError(t, err)

	_, err = audmix.Bounce(context.Background(), sess, map[string]*audio.Reader{"x": r})
	assert.ErrorIs(t, err, audmix.ErrFormatMismatch)
	assert.Zero(t, sess.Len())
}

func TestBounce_DuplicateInput(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t)
	require.True(t, sess.Attach("b"))

	_, err := audmix.Bounce(context.Background(), sess, map[string]*audio.Reader{
		"a": constantInput(t, 100, 0.1),
		"b": constantInput(t, 100, 0.1),
	})
	assert.ErrorIs(t, err, audmix.ErrDuplicateInput)
	assert.Equal(t, []string{"b"}, sess.Sources())
}

func TestBounce_Cancelled(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := audmix.Bounce(ctx, sess, map[string]*audio.Reader{"a": constantInput(t, 10*blockFrames, 0.1)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestBounce_RenderFailure(t *testing.T) {
	t.Parallel()

	sess, engine := newSession(t)
	engine.QueueStatus(mixer.RenderSuccess, nil)
	engine.QueueStatus(mixer.RenderInsufficientDataFromInputNode, nil)

	n, err := audmix.Bounce(context.Background(), sess, map[string]*audio.Reader{"a": constantInput(t, 10*blockFrames, 0.1)})
	assert.ErrorIs(t, err, audmix.ErrRenderFailed)
	assert.Equal(t, 1, n)
}

func TestBounce_StartFailure(t *testing.T) {
	t.Parallel()

	sess, engine := newSession(t)
	engine.FailStart(errors.New("device busy"))

	_, err := audmix.Bounce(context.Background(), sess, map[string]*audio.Reader{"a": constantInput(t, blockFrames, 0.1)})
	assert.ErrorIs(t, err, mixer.ErrEngineStart)
	assert.Zero(t, sess.Len())
}

func TestBounce_NilSession(t *testing.T) {
	t.Parallel()

	_, err := audmix.Bounce(context.Background(), nil, nil)
	assert.ErrorIs(t, err, audmix.ErrNilSession)
}
