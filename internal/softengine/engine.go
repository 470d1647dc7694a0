// SPDX-License-Identifier: EPL-2.0

package softengine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
)

// DefaultMaxFrames is the largest block an Engine renders unless configured
// otherwise.
const DefaultMaxFrames = 4096

var _ mixer.Engine = (*Engine)(nil)

type queuedResult struct {
	status mixer.RenderStatus
	err    error
}

// Engine is an in-process offline mixing graph. Each render zeroes the output
// block and adds every attached, connected and playing player into it, scaled
// by the player's volume; players without enough queued audio contribute
// silence for the remainder.
type Engine struct {
	mu  sync.Mutex
	log *logrus.Entry

	limit     int
	players   []*Player
	connected map[*Player]pcm.Format

	offline   bool
	format    pcm.Format
	maxFrames int
	running   bool
	renders   int

	failEnable error
	failStart  error
	results    []queuedResult
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxFrames caps the block size the engine negotiates.
func WithMaxFrames(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		log:       logrus.NewEntry(logrus.StandardLogger()),
		limit:     DefaultMaxFrames,
		connected: make(map[*Player]pcm.Format),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "softengine")

	return e
}

func (e *Engine) NewPlayer() mixer.Player { return newPlayer() }

func (e *Engine) Attach(p mixer.Player) {
	player, ok := p.(*Player)
	if !ok {
		e.log.WithField("function", "Attach").Warn("Foreign player ignored")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !slices.Contains(e.players, player) {
		e.players = append(e.players, player)
	}
}

func (e *Engine) Detach(p mixer.Player) {
	player, ok := p.(*Player)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.players = slices.DeleteFunc(e.players, func(q *Player) bool { return q == player })
	delete(e.connected, player)
}

// Connect routes an attached player into the mix. Connecting an unattached
// player is ignored.
func (e *Engine) Connect(p mixer.Player, format pcm.Format) {
	player, ok := p.(*Player)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if slices.Contains(e.players, player) {
		e.connected[player] = format
	}
}

// EnableOfflineRendering negotiates min(maxFrames, limit) as the block size.
func (e *Engine) EnableOfflineRendering(format pcm.Format, maxFrames int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failEnable != nil {
		return e.failEnable
	}
	if e.running {
		return ErrRunning
	}
	if err := format.Validate(); err != nil {
		return err
	}
	if maxFrames < 1 {
		return fmt.Errorf("%w: %d", ErrFrameCount, maxFrames)
	}

	e.offline = true
	e.format = format
	e.maxFrames = min(maxFrames, e.limit)

	e.log.WithFields(logrus.Fields{
		"function":   "EnableOfflineRendering",
		"format":     format.String(),
		"max_frames": e.maxFrames,
	}).Debug("Offline rendering enabled")

	return nil
}

func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failStart != nil {
		return e.failStart
	}
	if !e.offline {
		return ErrNotConfigured
	}
	e.running = true

	return nil
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.running = false
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

func (e *Engine) MaximumRenderFrames() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.maxFrames
}

func (e *Engine) RenderFormat() pcm.Format {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.format
}

// RenderOffline mixes frames frames into out.
func (e *Engine) RenderOffline(frames int, out *pcm.Buffer) (mixer.RenderStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return mixer.RenderCannotDoInCurrentContext, nil
	}
	if len(e.results) > 0 {
		r := e.results[0]
		e.results = e.results[1:]
		return r.status, r.err
	}

	if frames < 1 || frames > e.maxFrames {
		return mixer.RenderError, fmt.Errorf("%w: %d (max %d)", ErrFrameCount, frames, e.maxFrames)
	}
	if out == nil || out.Format() != e.format {
		return mixer.RenderError, ErrFormat
	}
	if err := out.SetFrameLength(frames); err != nil {
		return mixer.RenderError, err
	}
	out.Zero()

	for _, p := range e.players {
		format, ok := e.connected[p]
		if !ok {
			continue
		}
		if format != e.format {
			return mixer.RenderError, fmt.Errorf("%w: player connected as %s, engine renders %s", ErrFormat, format, e.format)
		}
		p.mixInto(out, frames)
	}
	e.renders++

	return mixer.RenderSuccess, nil
}

// FailEnable makes EnableOfflineRendering return err until cleared with nil.
func (e *Engine) FailEnable(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failEnable = err
}

// FailStart makes Start return err until cleared with nil.
func (e *Engine) FailStart(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failStart = err
}

// QueueStatus makes the next running RenderOffline call return status and err
// without rendering. Queued results are consumed in order.
func (e *Engine) QueueStatus(status mixer.RenderStatus, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.results = append(e.results, queuedResult{status: status, err: err})
}

// Players returns the attached players in attach order.
func (e *Engine) Players() []*Player {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.players)
}

func (e *Engine) Attached() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.players)
}

func (e *Engine) Connected() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.connected)
}

// Renders counts successful renders.
func (e *Engine) Renders() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.renders
}
