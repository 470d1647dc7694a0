// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/pcm"
)

// source is one mixable input line.
type source struct {
	id      string
	volume  float32
	pending uint32
	player  Player
}

// find is a linear scan; sessions hold tens of sources at most.
func (s *Session) find(id string) (int, *source) {
	for i, src := range s.sources {
		if src.id == id {
			return i, src
		}
	}

	return -1, nil
}

// Attach registers a new source with volume 1 and nothing pending. It returns
// false, changing nothing, when id is already attached. A source attached
// while the session runs starts playing right away.
func (s *Session) Attach(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"function": "Attach", "source": id})

	if _, src := s.find(id); src != nil {
		log.Debug("Source already attached")
		return false
	}

	player := s.engine.NewPlayer()
	s.engine.Attach(player)
	s.engine.Connect(player, s.format)
	if s.state == StateRunning {
		player.Play()
	}

	s.sources = append(s.sources, &source{id: id, volume: 1, player: player})
	log.Debug("Source attached")

	return true
}

// Detach removes a source and its node from the engine. Frames it still had
// pending are forgotten.
func (s *Session) Detach(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"function": "Detach", "source": id})

	i, src := s.find(id)
	if src == nil {
		log.Debug("Source not attached")
		return false
	}

	src.player.Stop()
	s.engine.Detach(src.player)
	s.sources = slices.Delete(s.sources, i, i+1)
	log.WithField("pending", src.pending).Debug("Source detached")

	return true
}

// SetVolume changes a source's gain, applied live to its player. Gains must be
// finite and within [0, MaxVolume]; it returns false for an unknown source or
// an out-of-range gain.
func (s *Session) SetVolume(id string, v float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, src := s.find(id)
	if src == nil || !validVolume(v) {
		s.log.WithFields(logrus.Fields{
			"function": "SetVolume",
			"source":   id,
			"volume":   v,
		}).Debug("Volume rejected")
		return false
	}

	src.volume = v
	src.player.SetVolume(v)

	return true
}

func (s *Session) Volume(id string) (float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, src := s.find(id)
	if src == nil {
		return 0, false
	}

	return src.volume, true
}

func validVolume(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && f >= 0 && f <= MaxVolume
}

// Append queues buf for playback on a source and adds its frame length to the
// source's pending count. buf must be in the session's processing format. It
// returns false for an unknown source, a nil or mismatched buffer, or a
// pending count that would overflow.
func (s *Session) Append(id string, buf *pcm.Buffer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"function": "Append", "source": id})

	_, src := s.find(id)
	if src == nil {
		log.Debug("Source not attached")
		return false
	}
	if buf == nil || buf.Format() != s.format {
		log.Debug("Buffer does not match the processing format")
		return false
	}
	frames := uint64(buf.FrameLength())
	if uint64(src.pending)+frames > math.MaxUint32 {
		log.WithField("frames", frames).Warn("Pending frame count would overflow")
		return false
	}

	src.player.SetVolume(src.volume)
	src.player.Schedule(buf)
	src.pending += uint32(frames)

	return true
}

// PendingFrames is the number of frames appended to a source and not yet
// charged by a render.
func (s *Session) PendingFrames(id string) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, src := s.find(id)
	if src == nil {
		return 0, false
	}

	return src.pending, true
}

// Sources lists the attached source identifiers in attach order.
func (s *Session) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.sources))
	for i, src := range s.sources {
		ids[i] = src.id
	}

	return ids
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sources)
}
