// SPDX-License-Identifier: EPL-2.0

package mixer

import "github.com/ik5/audmix/pcm"

// Sink receives every successfully rendered block. buf is owned by the
// session and is overwritten by the next render; copy it to keep it.
type Sink interface {
	OnRendered(s *Session, buf *pcm.Buffer, userInfo any)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(s *Session, buf *pcm.Buffer, userInfo any)

func (f SinkFunc) OnRendered(s *Session, buf *pcm.Buffer, userInfo any) { f(s, buf, userInfo) }

// Sinks fans a rendered block out to several sinks in order. Nil entries are
// skipped.
func Sinks(sinks ...Sink) Sink {
	return SinkFunc(func(s *Session, buf *pcm.Buffer, userInfo any) {
		for _, sink := range sinks {
			if sink != nil {
				sink.OnRendered(s, buf, userInfo)
			}
		}
	})
}
