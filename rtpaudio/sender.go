// SPDX-License-Identifier: EPL-2.0

package rtpaudio

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
)

// Sender is a mixer sink that packetizes every rendered block and writes each
// packet to w with a single Write, as a datagram socket expects.
type Sender struct {
	mu      sync.Mutex
	pk      *Packetizer
	w       io.Writer
	log     *logrus.Entry
	packets int
	err     error
}

var _ mixer.Sink = (*Sender)(nil)

// NewSender sends the output of pk to w. A nil log means the logrus standard
// logger.
func NewSender(w io.Writer, pk *Packetizer, log *logrus.Entry) *Sender {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Sender{
		pk:  pk,
		w:   w,
		log: log.WithFields(logrus.Fields{"component": "rtpaudio", "ssrc": pk.SSRC()}),
	}
}

// Send packetizes buf and writes the packets in order.
func (s *Sender) Send(buf *pcm.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	packets, err := s.pk.Packetize(buf)
	if err != nil {
		return err
	}

	for _, pkt := range packets {
		raw, err := pkt.Marshal()
		if err != nil {
			return fmt.Errorf("marshalling RTP packet: %w", err)
		}

		if _, err := s.w.Write(raw); err != nil {
			return fmt.Errorf("sending RTP packet %d: %w", pkt.SequenceNumber, err)
		}
		s.packets++
	}

	return nil
}

// OnRendered implements mixer.Sink. The first failure stops the stream and is
// reported by Err.
func (s *Sender) OnRendered(_ *mixer.Session, buf *pcm.Buffer, _ any) {
	if s.Err() != nil {
		return
	}

	if err := s.Send(buf); err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "OnRendered",
			"error":    err.Error(),
		}).Warn("RTP stream stopped")

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
}

// Packets is the number of packets written so far.
func (s *Sender) Packets() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.packets
}

func (s *Sender) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
