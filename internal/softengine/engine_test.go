// SPDX-License-Identifier: EPL-2.0

package softengine

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
)

var mono8k = pcm.Format{SampleRate: 8000, Channels: 1}

func quiet() Option {
	log, _ := logtest.NewNullLogger()
	return WithLogger(logrus.NewEntry(log))
}

func ramp(t *testing.T, format pcm.Format, values ...float32) *pcm.Buffer {
	t.Helper()

	buf, err := pcm.NewBuffer(format, len(values))
	require.NoError(t, err)
	require.NoError(t, buf.SetFrameLength(len(values)))
	for c := range format.Channels {
		copy(buf.Channel(c), values)
	}

	return buf
}

// running returns a started engine with one connected, playing player.
func running(t *testing.T, opts ...Option) (*Engine, *Player) {
	t.Helper()

	e := New(append([]Option{quiet()}, opts...)...)
	p := e.NewPlayer().(*Player)
	e.Attach(p)
	e.Connect(p, mono8k)
	require.NoError(t, e.EnableOfflineRendering(mono8k, 4))
	require.NoError(t, e.Start())
	p.Play()

	return e, p
}

func TestEngine_RenderPlaysQueueInOrder(t *testing.T) {
	t.Parallel()

	e, p := running(t)
	p.Schedule(ramp(t, mono8k, 1, 2, 3))
	p.Schedule(ramp(t, mono8k, 4, 5, 6))

	out, _ := pcm.NewBuffer(mono8k, 4)

	status, err := e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, mixer.RenderSuccess, status)
	assert.Equal(t, []float32{1, 2, 3, 4}, out.Channel(0))
	assert.Equal(t, 2, p.Queued())

	_, err = e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6, 0, 0}, out.Channel(0), "dry player pads with silence")
	assert.Zero(t, p.Queued())
	assert.Equal(t, 2, e.Renders())
}

func TestEngine_SumsScaledPlayers(t *testing.T) {
	t.Parallel()

	e, a := running(t)
	b := e.NewPlayer().(*Player)
	e.Attach(b)
	e.Connect(b, mono8k)
	b.Play()

	a.SetVolume(0.5)
	b.SetVolume(2)
	a.Schedule(ramp(t, mono8k, 1, 1, 1, 1))
	b.Schedule(ramp(t, mono8k, 0.25, 0.25))

	out, _ := pcm.NewBuffer(mono8k, 4)
	_, err := e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 0.5, 0.5}, out.Channel(0))
}

func TestEngine_SkipsIdlePlayers(t *testing.T) {
	t.Parallel()

	e, p := running(t)
	p.Schedule(ramp(t, mono8k, 1, 1, 1, 1))

	unconnected := e.NewPlayer().(*Player)
	e.Attach(unconnected)
	unconnected.Play()
	unconnected.Schedule(ramp(t, mono8k, 9, 9, 9, 9))

	paused := e.NewPlayer().(*Player)
	e.Attach(paused)
	e.Connect(paused, mono8k)
	paused.Schedule(ramp(t, mono8k, 7, 7, 7, 7))

	out, _ := pcm.NewBuffer(mono8k, 4)
	_, err := e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1}, out.Channel(0))
	assert.Equal(t, 4, paused.Queued(), "paused player keeps its queue")
}

func TestEngine_DetachRemovesPlayer(t *testing.T) {
	t.Parallel()

	e, p := running(t)
	p.Schedule(ramp(t, mono8k, 1, 1, 1, 1))
	e.Detach(p)

	assert.Zero(t, e.Attached())
	assert.Zero(t, e.Connected())

	out, _ := pcm.NewBuffer(mono8k, 4)
	_, err := e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, out.Channel(0))
}

func TestEngine_ConnectRequiresAttach(t *testing.T) {
	t.Parallel()

	e := New(quiet())
	p := e.NewPlayer()
	e.Connect(p, mono8k)
	assert.Zero(t, e.Connected())

	e.Attach(p)
	e.Attach(p)
	e.Connect(p, mono8k)
	assert.Equal(t, 1, e.Attached())
	assert.Equal(t, 1, e.Connected())
}

func TestEngine_ScheduleCopies(t *testing.T) {
	t.Parallel()

	e, p := running(t)
	buf := ramp(t, mono8k, 1, 1, 1, 1)
	p.Schedule(buf)
	buf.Channel(0)[0] = 100

	out, _ := pcm.NewBuffer(mono8k, 4)
	_, err := e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, float32(1), out.Channel(0)[0])
}

func TestEngine_NegotiatesBlockSize(t *testing.T) {
	t.Parallel()

	e := New(quiet(), WithMaxFrames(256))
	require.NoError(t, e.EnableOfflineRendering(mono8k, 1024))
	assert.Equal(t, 256, e.MaximumRenderFrames())
	assert.Equal(t, mono8k, e.RenderFormat())

	require.NoError(t, e.EnableOfflineRendering(mono8k, 100))
	assert.Equal(t, 100, e.MaximumRenderFrames())
}

func TestEngine_RenderStatuses(t *testing.T) {
	t.Parallel()

	e := New(quiet())
	out, _ := pcm.NewBuffer(mono8k, 4)

	status, err := e.RenderOffline(4, out)
	assert.NoError(t, err)
	assert.Equal(t, mixer.RenderCannotDoInCurrentContext, status, "not running")

	assert.ErrorIs(t, e.Start(), ErrNotConfigured)

	require.NoError(t, e.EnableOfflineRendering(mono8k, 4))
	require.NoError(t, e.Start())
	assert.ErrorIs(t, e.EnableOfflineRendering(mono8k, 4), ErrRunning)

	status, err = e.RenderOffline(5, out)
	assert.ErrorIs(t, err, ErrFrameCount)
	assert.Equal(t, mixer.RenderError, status)

	stereo, _ := pcm.NewBuffer(pcm.Format{SampleRate: 8000, Channels: 2}, 4)
	status, err = e.RenderOffline(4, stereo)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, mixer.RenderError, status)

	e.Stop()
	assert.False(t, e.IsRunning())
}

func TestEngine_ConnectedFormatMismatch(t *testing.T) {
	t.Parallel()

	e, _ := running(t)
	odd := e.NewPlayer()
	e.Attach(odd)
	e.Connect(odd, pcm.Format{SampleRate: 44100, Channels: 1})

	out, _ := pcm.NewBuffer(mono8k, 4)
	status, err := e.RenderOffline(4, out)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, mixer.RenderError, status)
}

func TestEngine_FaultInjection(t *testing.T) {
	t.Parallel()

	e := New(quiet())
	boom := errors.New("boom")

	e.FailEnable(boom)
	assert.ErrorIs(t, e.EnableOfflineRendering(mono8k, 4), boom)
	e.FailEnable(nil)
	require.NoError(t, e.EnableOfflineRendering(mono8k, 4))

	e.FailStart(boom)
	assert.ErrorIs(t, e.Start(), boom)
	e.FailStart(nil)
	require.NoError(t, e.Start())

	e.QueueStatus(mixer.RenderInsufficientDataFromInputNode, nil)
	e.QueueStatus(mixer.RenderError, boom)

	out, _ := pcm.NewBuffer(mono8k, 4)
	status, err := e.RenderOffline(4, out)
	assert.NoError(t, err)
	assert.Equal(t, mixer.RenderInsufficientDataFromInputNode, status)

	status, err = e.RenderOffline(4, out)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, mixer.RenderError, status)

	status, err = e.RenderOffline(4, out)
	assert.NoError(t, err)
	assert.Equal(t, mixer.RenderSuccess, status)
	assert.Equal(t, 1, e.Renders())
}

// foreignPlayer is a Player from some other engine.
type foreignPlayer struct{ mixer.Player }

func TestEngine_IgnoresForeignPlayers(t *testing.T) {
	t.Parallel()

	e := New(quiet())
	e.Attach(foreignPlayer{})
	e.Connect(foreignPlayer{}, mono8k)
	e.Detach(foreignPlayer{})

	assert.Zero(t, e.Attached())
	assert.Zero(t, e.Connected())
}

func TestPlayer_DropsMismatchedBlocks(t *testing.T) {
	t.Parallel()

	e, p := running(t)
	p.Schedule(ramp(t, pcm.Format{SampleRate: 8000, Channels: 2}, 9, 9))
	p.Schedule(ramp(t, mono8k, 1, 2))
	p.Schedule(nil)

	out, _ := pcm.NewBuffer(mono8k, 4)
	_, err := e.RenderOffline(4, out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 0, 0}, out.Channel(0))
}
