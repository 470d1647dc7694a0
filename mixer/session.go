// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/pcm"
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateConfigured State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session mixes named sources through an Engine, one fixed-size block per
// Render call. All methods are safe for concurrent use. Registry and state
// methods are serialised by an internal mutex, and the sink runs with that
// mutex released so it may call them. Render calls are serialised among
// themselves through the sink call, since the output buffer is reused; a sink
// must not call Render.
type Session struct {
	mu       sync.Mutex
	renderMu sync.Mutex

	engine    Engine
	format    pcm.Format
	maxFrames int
	sources   []*source
	sink      Sink
	log       *logrus.Entry

	state     State
	output    *pcm.Buffer
	blockSize int
}

// New creates a session in the Configured state.
func New(engine Engine, cfg Config) (*Session, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	format, err := pcm.NewFormat(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	maxFrames := cfg.MaximumFrameCount
	if maxFrames == 0 {
		maxFrames = DefaultMaximumFrameCount
	}
	if maxFrames < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameCount, maxFrames)
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "mixer")

	log.WithFields(logrus.Fields{
		"function":   "New",
		"format":     format.String(),
		"max_frames": maxFrames,
	}).Debug("Session created")

	return &Session{
		engine:    engine,
		format:    format,
		maxFrames: maxFrames,
		log:       log,
	}, nil
}

// Format is the processing format every appended block must use.
func (s *Session) Format() pcm.Format { return s.format }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) MaximumFrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.maxFrames
}

// SetMaximumFrameCount changes the block size requested on the next Start.
func (s *Session) SetMaximumFrameCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrRunning
	}
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidFrameCount, n)
	}
	s.maxFrames = n

	return nil
}

// RenderBlockSize is the block size negotiated with the engine, or 0 when the
// session is not running.
func (s *Session) RenderBlockSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blockSize
}

// SetSink installs the receiver of rendered blocks; nil removes it.
func (s *Session) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sink = sink
}

// Start configures the engine for offline rendering and starts playback of
// every attached source. On failure the registry is untouched, the session is
// not running, and the error wraps ErrEnableOffline or ErrEngineStart.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithField("function", "Start")

	if s.engine.IsRunning() {
		s.engine.Stop()
	}
	s.release()

	for _, src := range s.sources {
		s.engine.Connect(src.player, s.format)
	}

	if err := s.engine.EnableOfflineRendering(s.format, s.maxFrames); err != nil {
		log.WithError(err).Warn("Offline rendering refused")
		return fmt.Errorf("%w: %w", ErrEnableOffline, err)
	}

	if err := s.engine.Start(); err != nil {
		log.WithError(err).Warn("Engine failed to start")
		return fmt.Errorf("%w: %w", ErrEngineStart, err)
	}

	frames := s.engine.MaximumRenderFrames()
	if frames < 1 {
		s.engine.Stop()
		log.WithField("block_size", frames).Warn("Engine negotiated an empty block")
		return fmt.Errorf("%w: negotiated %d frames", ErrEngineStart, frames)
	}
	out, err := pcm.NewBuffer(s.engine.RenderFormat(), frames)
	if err != nil {
		s.engine.Stop()
		log.WithError(err).Warn("Engine negotiated an unusable render format")
		return fmt.Errorf("%w: %w", ErrEngineStart, err)
	}

	for _, src := range s.sources {
		src.player.Play()
	}

	s.output = out
	s.blockSize = out.FrameCapacity()
	s.state = StateRunning

	log.WithFields(logrus.Fields{
		"sources":    len(s.sources),
		"block_size": s.blockSize,
	}).Debug("Session started")

	return nil
}

// Stop halts the engine and every source's playback and releases the output
// buffer. Sources and their pending frame counts are kept. Stop is
// idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Stop()
	for _, src := range s.sources {
		src.player.Stop()
	}
	s.release()

	s.log.WithField("function", "Stop").Debug("Session stopped")
}

// release drops the output buffer and leaves the running state.
func (s *Session) release() {
	s.output = nil
	s.blockSize = 0
	if s.state == StateRunning {
		s.state = StateStopped
	}
}

// Render performs one offline render of RenderBlockSize frames when at least
// one source has a full block pending.
//
// It returns RenderError without rendering when the session is not running or
// no source is eligible. Any other non-success status from the engine is
// returned as is, and an engine error becomes RenderError; in both cases no
// pending count changes and the sink is not called. On success every source
// that was eligible before the render is charged one block, then the sink
// receives the output buffer and userInfo.
func (s *Session) Render(userInfo any) RenderStatus {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()

	log := s.log.WithField("function", "Render")

	if s.output == nil {
		s.mu.Unlock()
		log.Debug("Render while not running")
		return RenderError
	}

	block := uint32(s.blockSize)
	eligible := make([]*source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.pending >= block {
			eligible = append(eligible, src)
		}
	}
	if len(eligible) == 0 {
		s.mu.Unlock()
		log.Debug("No source has a full block pending")
		return RenderError
	}

	status, err := s.engine.RenderOffline(s.blockSize, s.output)
	if err != nil {
		s.mu.Unlock()
		log.WithError(err).Warn("Offline render failed")
		return RenderError
	}
	if status != RenderSuccess {
		s.mu.Unlock()
		log.WithField("status", status.String()).Debug("Engine did not render")
		return status
	}

	for _, src := range eligible {
		src.pending -= block
	}
	sink, out := s.sink, s.output
	s.mu.Unlock()

	if sink != nil {
		sink.OnRendered(s, out, userInfo)
	}

	return RenderSuccess
}
