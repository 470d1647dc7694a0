// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"

	"github.com/ik5/audmix/pcm"
)

// Engine is the mixing graph a Session drives. It owns summation: every
// attached, connected and playing Player contributes its scheduled frames,
// scaled by its volume, to each offline render.
type Engine interface {
	// NewPlayer creates a transport handle that is not yet attached.
	NewPlayer() Player
	Attach(p Player)
	Detach(p Player)
	// Connect routes p into the summing point using format.
	Connect(p Player, format pcm.Format)

	// EnableOfflineRendering switches the graph to pull-based block rendering.
	// The engine may negotiate a smaller block than maxFrames.
	EnableOfflineRendering(format pcm.Format, maxFrames int) error
	Start() error
	Stop()
	IsRunning() bool

	// RenderOffline renders frames frames into out.
	RenderOffline(frames int, out *pcm.Buffer) (RenderStatus, error)
	// MaximumRenderFrames is the negotiated block size.
	MaximumRenderFrames() int
	// RenderFormat is the negotiated output format.
	RenderFormat() pcm.Format
}

// Player is a transport handle: one source's node in the graph.
type Player interface {
	// Schedule queues buf for playback after everything already queued.
	Schedule(buf *pcm.Buffer)
	Play()
	Stop()
	SetVolume(v float32)
	Volume() float32
}

// RenderStatus is the outcome of a render call.
type RenderStatus int

const (
	RenderSuccess RenderStatus = iota
	RenderInsufficientDataFromInputNode
	RenderCannotDoInCurrentContext
	RenderError
)

func (s RenderStatus) String() string {
	switch s {
	case RenderSuccess:
		return "success"
	case RenderInsufficientDataFromInputNode:
		return "insufficient data from input node"
	case RenderCannotDoInCurrentContext:
		return "cannot do in current context"
	case RenderError:
		return "error"
	default:
		return fmt.Sprintf("RenderStatus(%d)", int(s))
	}
}
