package pipeline

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartomix/mixcraft/internal/config"
	"github.com/cartomix/mixcraft/internal/progress"
	"github.com/cartomix/mixcraft/internal/storage"
)

func writeClickWAV(t *testing.T, path string, sampleRate int, bpm, durationSec float64) {
	t.Helper()
	period := 60.0 / bpm
	samples := make([]float64, int(durationSec*float64(sampleRate)))
	burstLen := int(0.03 * float64(sampleRate))
	for bt := 0.0; bt < durationSec; bt += period {
		start := int(bt * float64(sampleRate))
		for i := 0; i < burstLen && start+i < len(samples); i++ {
			decay := math.Exp(-30.0 * float64(i) / float64(sampleRate))
			samples[start+i] += decay * math.Sin(2*math.Pi*220*float64(i)/float64(sampleRate))
		}
	}

	buf := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf[i] = int16(s * 32767)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	dataSize := len(buf) * 2
	riffSize := 36 + dataSize
	f.Write([]byte("RIFF"))
	binary.Write(f, binary.LittleEndian, uint32(riffSize))
	f.Write([]byte("WAVE"))
	f.Write([]byte("fmt "))
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1))
	binary.Write(f, binary.LittleEndian, uint16(1))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(f, binary.LittleEndian, int16(2))
	binary.Write(f, binary.LittleEndian, int16(16))
	f.Write([]byte("data"))
	binary.Write(f, binary.LittleEndian, uint32(dataSize))
	for _, v := range buf {
		binary.Write(f, binary.LittleEndian, v)
	}
}

func TestAnalyzeFileProducesAndCachesDescriptor(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "track.wav")
	writeClickWAV(t, wavPath, 22050, 128, 8.0)

	cfg := &config.Config{DataDir: dir, LogLevel: "info", SampleRate: 22050}
	db, err := storage.Open(dir, slog.Default())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()

	p := New(cfg, db, nil)

	events := make(chan progress.Event, 32)
	reporter := progress.NewReporter("job-1", events)

	td, err := p.AnalyzeFile(context.Background(), wavPath, "test-hash", reporter)
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if td.Hash != "test-hash" {
		t.Errorf("Hash = %q, want test-hash", td.Hash)
	}
	if td.DurationMs <= 0 {
		t.Errorf("DurationMs = %d, want > 0", td.DurationMs)
	}
	if len(td.Timeline) == 0 {
		t.Errorf("Timeline is empty")
	}
	close(events)

	cached, err := db.GetDescriptor("test-hash")
	if err != nil {
		t.Fatalf("GetDescriptor: %v", err)
	}
	if cached == nil {
		t.Fatalf("descriptor was not cached")
	}
	if cached.BPM != td.BPM {
		t.Errorf("cached BPM = %v, want %v", cached.BPM, td.BPM)
	}
}

func TestAnalyzeFileHonorsDisableFlags(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "track.wav")
	writeClickWAV(t, wavPath, 22050, 128, 8.0)

	cfg := &config.Config{
		DataDir:    dir,
		LogLevel:   "info",
		SampleRate: 22050,
		Disable:    config.Disable{BPM: true, Tonal: true, Cues: true},
	}
	db, err := storage.Open(dir, slog.Default())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()

	p := New(cfg, db, nil)
	td, err := p.AnalyzeFile(context.Background(), wavPath, "test-hash-2", nil)
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if td.BPM != 0 {
		t.Errorf("BPM = %v, want 0 with rhythm disabled", td.BPM)
	}
	if td.Key.Strength != 0 {
		t.Errorf("Key = %+v, want zero value with tonal disabled", td.Key)
	}
}
