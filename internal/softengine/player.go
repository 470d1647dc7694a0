// SPDX-License-Identifier: EPL-2.0

package softengine

import (
	"sync"

	"github.com/ik5/audmix/pcm"
)

// Player queues blocks and plays them frame by frame into the engine's mix.
// Stop pauses playback; queued blocks stay until they are played.
type Player struct {
	mu      sync.Mutex
	queue   []*pcm.Buffer
	offset  int // frames of queue[0] already played
	playing bool
	volume  float32
}

func newPlayer() *Player {
	return &Player{volume: 1}
}

// Schedule queues a copy of buf.
func (p *Player) Schedule(buf *pcm.Buffer) {
	if buf == nil {
		return
	}
	cp := buf.Copy()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue = append(p.queue, cp)
}

func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = true
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

func (p *Player) SetVolume(v float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = v
}

func (p *Player) Volume() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.volume
}

// Queued is the number of scheduled frames not yet played.
func (p *Player) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := -p.offset
	for _, b := range p.queue {
		n += b.FrameLength()
	}

	return n
}

// mixInto adds up to frames of queued audio, scaled by the volume, onto the
// start of out. Running dry leaves the rest of out as it was. Blocks whose
// channel count differs from out are dropped.
func (p *Player) mixInto(out *pcm.Buffer, frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}

	channels := out.Format().Channels
	written := 0
	for written < frames && len(p.queue) > 0 {
		head := p.queue[0]
		if head.Format().Channels != channels {
			p.queue = p.queue[1:]
			p.offset = 0
			continue
		}

		n := min(frames-written, head.FrameLength()-p.offset)
		for c := range channels {
			src := head.Channel(c)[p.offset : p.offset+n]
			dst := out.Channel(c)[written : written+n]
			for i, v := range src {
				dst[i] += v * p.volume
			}
		}
		written += n
		p.offset += n

		if p.offset == head.FrameLength() {
			p.queue[0] = nil
			p.queue = p.queue[1:]
			p.offset = 0
		}
	}
}
