package decode

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// writeTestWAV builds a minimal mono 16-bit PCM WAV in memory.
func writeTestWAV(t *testing.T, sampleRate int, samples []int16) []byte {
	t.Helper()
	var buf bytes.Buffer
	dataSize := len(samples) * 2
	byteRate := sampleRate * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestDecodeWAVRoundTrip(t *testing.T) {
	samples := []int16{0, 16384, -16384, 32767, -32768}
	raw := writeTestWAV(t, 44100, samples)

	pcm, err := Decode(bytes.NewReader(raw), 44100)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if pcm.SampleRate != 44100 {
		t.Fatalf("sample rate = %d, want 44100", pcm.SampleRate)
	}
	if len(pcm.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(pcm.Samples), len(samples))
	}
	if math.Abs(pcm.Samples[1]-16384.0/32768.0) > 1e-6 {
		t.Errorf("sample 1 = %f, want ~0.5", pcm.Samples[1])
	}
}

func TestDecodeRejectsUnsupportedContainer(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("ID3\x03garbage")), 44100)
	if err == nil {
		t.Fatal("expected decode error for non-WAV input")
	}
}

func TestFrameIteratorCoversBuffer(t *testing.T) {
	pcm := &PCM{SampleRate: 44100, Samples: make([]float64, 10000)}
	it := NewFrameIterator(pcm, 2048, 1024)
	count := 0
	for {
		frame, ok := it.Next()
		if !ok {
			break
		}
		if len(frame) != 2048 {
			t.Fatalf("frame length = %d, want 2048", len(frame))
		}
		count++
	}
	if count != it.Count() {
		t.Errorf("iterated %d frames, Count() reported %d", count, it.Count())
	}
	if count == 0 {
		t.Fatal("expected at least one frame")
	}
}

func TestResampleChangesLength(t *testing.T) {
	pcm := &PCM{SampleRate: 44100, Samples: make([]float64, 44100)}
	out := Resample(pcm, 22050)
	if out.SampleRate != 22050 {
		t.Fatalf("sample rate = %d, want 22050", out.SampleRate)
	}
	if len(out.Samples) < 22000 || len(out.Samples) > 22100 {
		t.Errorf("resampled length %d, want ~22050", len(out.Samples))
	}
}

func TestNormalizeClampsPeaks(t *testing.T) {
	pcm := &PCM{SampleRate: 44100, Samples: []float64{0.01, -0.01, 0.02, -0.02}}
	Normalize(pcm, -1.0)
	for _, s := range pcm.Samples {
		if s > 1.0 || s < -1.0 {
			t.Fatalf("sample %f exceeds unit range after normalize", s)
		}
	}
}
