// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/audmix/pcm"
)

func block(t *testing.T, channels ...[]float32) *pcm.Buffer {
	t.Helper()

	buf, err := pcm.NewBufferFromChannels(8000, channels)
	if err != nil {
		t.Fatalf("NewBufferFromChannels() error = %v", err)
	}

	return buf
}

func assertChannel(t *testing.T, buf *pcm.Buffer, c int, want ...float32) {
	t.Helper()

	got := buf.Channel(c)
	if len(got) != len(want) {
		t.Fatalf("channel %d has %d frames, want %d", c, len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("channel %d frame %d = %v, want %v", c, i, got[i], want[i])
		}
	}
}

func TestChannelMixer_Passthrough(t *testing.T) {
	t.Parallel()

	m, _ := NewChannelMixer(2, 2)
	out, err := m.Apply(block(t, []float32{0.1, 0.2}, []float32{0.3, 0.4}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	assertChannel(t, out, 0, 0.1, 0.2)
	assertChannel(t, out, 1, 0.3, 0.4)
}

func TestChannelMixer_StereoToMono(t *testing.T) {
	t.Parallel()

	m, _ := NewChannelMixer(2, 1)
	out, err := m.Apply(block(t, []float32{0.4, 1}, []float32{0.6, -1}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Format().Channels != 1 {
		t.Fatalf("Channels = %d, want 1", out.Format().Channels)
	}
	// (0.4 + 0.6) / 2 = 0.5
	assertChannel(t, out, 0, 0.5, 0)
}

func TestChannelMixer_MultiChannelToMono(t *testing.T) {
	t.Parallel()

	m, _ := NewChannelMixer(4, 1)
	out, err := m.Apply(block(t, []float32{0.1}, []float32{0.2}, []float32{0.3}, []float32{0.4}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	assertChannel(t, out, 0, 0.25)
}

func TestChannelMixer_MonoToStereo(t *testing.T) {
	t.Parallel()

	m, _ := NewChannelMixer(1, 2)
	out, err := m.Apply(block(t, []float32{0.7, -0.7}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	assertChannel(t, out, 0, 0.7, -0.7)
	assertChannel(t, out, 1, 0.7, -0.7)
}

func TestChannelMixer_FoldDown(t *testing.T) {
	t.Parallel()

	// Six channels onto two: even inputs feed left, odd inputs feed right.
	m, _ := NewChannelMixer(6, 2)
	out, err := m.Apply(block(t,
		[]float32{0.3}, []float32{-0.3},
		[]float32{0.6}, []float32{-0.6},
		[]float32{0.0}, []float32{0.0},
	))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	assertChannel(t, out, 0, 0.3)
	assertChannel(t, out, 1, -0.3)
}

func TestChannelMixer_SpreadUp(t *testing.T) {
	t.Parallel()

	m, _ := NewChannelMixer(2, 3)
	out, err := m.Apply(block(t, []float32{1}, []float32{2}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	assertChannel(t, out, 0, 1)
	assertChannel(t, out, 1, 2)
	assertChannel(t, out, 2, 1)
}

func TestChannelMixer_Mismatch(t *testing.T) {
	t.Parallel()

	m, _ := NewChannelMixer(2, 1)
	dst, _ := pcm.NewBuffer(pcm.Format{SampleRate: 8000, Channels: 1}, 4)

	if err := m.Mix(dst, block(t, []float32{1})); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("Mix() with mono source error = %v, want ErrInvalidDstSize", err)
	}

	small, _ := pcm.NewBuffer(pcm.Format{SampleRate: 8000, Channels: 1}, 1)
	if err := m.Mix(small, block(t, []float32{1, 2}, []float32{3, 4})); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("Mix() into short block error = %v, want ErrInvalidDstSize", err)
	}
}

func TestNewChannelMixer_Invalid(t *testing.T) {
	t.Parallel()

	for _, tc := range [][2]int{{0, 1}, {1, 0}, {pcm.MaxChannels + 1, 2}} {
		if _, err := NewChannelMixer(tc[0], tc[1]); !errors.Is(err, pcm.ErrInvalidFormat) {
			t.Errorf("NewChannelMixer(%d, %d) error = %v", tc[0], tc[1], err)
		}
	}
}

func BenchmarkChannelMixer_StereoToMono(b *testing.B) {
	m, _ := NewChannelMixer(2, 1)
	src, _ := pcm.NewBuffer(pcm.Format{SampleRate: 44100, Channels: 2}, 4096)
	_ = src.SetFrameLength(4096)
	dst, _ := pcm.NewBuffer(pcm.Format{SampleRate: 44100, Channels: 1}, 4096)

	b.ReportAllocs()
	for b.Loop() {
		_ = m.Mix(dst, src)
	}
}
