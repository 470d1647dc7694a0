// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audmix/pcm"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate   int
	channels     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	if m.offset >= len(m.samples) {
		return n, io.EOF
	}

	return n, nil
}

// createAIFFFile builds a minimal 16-bit AIFF at 8000 Hz.
func createAIFFFile(channels int, samples []int16) []byte {
	frames := len(samples) / channels

	comm := new(bytes.Buffer)
	binary.Write(comm, binary.BigEndian, uint16(channels))
	binary.Write(comm, binary.BigEndian, uint32(frames))
	binary.Write(comm, binary.BigEndian, uint16(16))
	// 8000 as an 80-bit extended float
	comm.Write([]byte{0x40, 0x0B, 0xFA, 0, 0, 0, 0, 0, 0, 0})

	ssnd := new(bytes.Buffer)
	binary.Write(ssnd, binary.BigEndian, uint32(0)) // offset
	binary.Write(ssnd, binary.BigEndian, uint32(0)) // block size
	for _, s := range samples {
		binary.Write(ssnd, binary.BigEndian, s)
	}

	body := new(bytes.Buffer)
	body.WriteString("AIFF")
	body.WriteString("COMM")
	binary.Write(body, binary.BigEndian, uint32(comm.Len()))
	body.Write(comm.Bytes())
	body.WriteString("SSND")
	binary.Write(body, binary.BigEndian, uint32(ssnd.Len()))
	body.Write(ssnd.Bytes())

	out := new(bytes.Buffer)
	out.WriteString("FORM")
	binary.Write(out, binary.BigEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

func beSamples(t *testing.T, ts *pcm.TimedSample) []int16 {
	t.Helper()

	list, err := ts.BufferList(false)
	if err != nil {
		t.Fatalf("BufferList() error = %v", err)
	}

	data := list[0].Data
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(data[2*i:]))
	}

	return out
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := map[string][]byte{
		"garbage": []byte("This is not AIFF data"),
		"empty":   {},
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestDecoder_ValidFile(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200, 300, -300}
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(createAIFFFile(2, samples))))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	desc := src.Description()
	if desc.SampleRate != 8000 || desc.ChannelsPerFrame != 2 || !desc.IsBigEndian() {
		t.Fatalf("Description() = %v, want s16be 8000Hz stereo", desc)
	}

	ts, err := src.ReadSample(16)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSample() error = %v", err)
	}

	if ts.NumSamples() != 3 {
		t.Fatalf("NumSamples() = %d, want 3", ts.NumSamples())
	}

	got := beSamples(t, ts)
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestSource_Description(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockAiffReader{sampleRate: 44100, channels: 2})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	desc := src.Description()
	if desc.SampleRate != 44100 || desc.ChannelsPerFrame != 2 {
		t.Errorf("Description() = %v, want 44100Hz stereo", desc)
	}

	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestNewSource_InvalidLayout(t *testing.T) {
	t.Parallel()

	if _, err := newSource(&mockAiffReader{sampleRate: 44100}); !errors.Is(err, ErrUnsupportedAiffLayout) {
		t.Errorf("no channels error = %v, want ErrUnsupportedAiffLayout", err)
	}

	if _, err := newSource(&mockAiffReader{channels: 1}); !errors.Is(err, ErrUnsupportedAiffLayout) {
		t.Errorf("no rate error = %v, want ErrUnsupportedAiffLayout", err)
	}
}

func TestSource_ReadSample(t *testing.T) {
	t.Parallel()

	testSamples := []int{0, 16384, -16384, 32767, -32768}
	src, err := newSource(&mockAiffReader{sampleRate: 44100, channels: 1, samples: testSamples})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	ts, err := src.ReadSample(10)
	if err != nil {
		t.Fatalf("ReadSample() error = %v", err)
	}

	buf, err := ts.StandardBuffer()
	if err != nil {
		t.Fatalf("StandardBuffer() error = %v", err)
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
	for i, v := range want {
		if got := buf.Channel(0)[i]; got != v {
			t.Errorf("frame %d = %v, want %v", i, got, v)
		}
	}

	if _, err := src.ReadSample(10); err != io.EOF {
		t.Errorf("ReadSample() after end error = %v, want io.EOF", err)
	}
}

func TestSource_ReadSample_MultipleReads(t *testing.T) {
	t.Parallel()

	samples := make([]int, 2*10)
	src, err := newSource(&mockAiffReader{sampleRate: 8000, channels: 2, samples: samples})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	total := 0
	var last pcm.Timing
	for {
		ts, err := src.ReadSample(3)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSample() error = %v", err)
		}

		total += ts.NumSamples()
		last = ts.Timing()
	}

	if total != 10 {
		t.Errorf("total frames = %d, want 10", total)
	}

	if last.PresentationTime.Value != 9 || last.PresentationTime.Timescale != 8000 {
		t.Errorf("last PTS = %v, want 9/8000", last.PresentationTime)
	}
}

func TestSource_ReadSample_Error(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockAiffReader{sampleRate: 44100, channels: 1, returnErrors: true})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	if _, err := src.ReadSample(10); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSample() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		message string
	}{
		{ErrNotAiffFile, "not an AIFF file"},
		{ErrOnlyPCM16bitSupported, "only 16-bit PCM AIFF is supported"},
		{ErrUnsupportedAiffLayout, "unsupported AIFF layout"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if tt.err.Error() != tt.message {
				t.Errorf("Error message = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}
}

func BenchmarkSource_ReadSample(b *testing.B) {
	samples := make([]int, 4096)
	for i := range samples {
		samples[i] = i * 8
	}

	for b.Loop() {
		src, _ := newSource(&mockAiffReader{sampleRate: 44100, channels: 2, samples: samples})
		for {
			if _, err := src.ReadSample(512); err != nil {
				break
			}
		}
	}
}
