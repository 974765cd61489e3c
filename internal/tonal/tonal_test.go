package tonal

import (
	"math"
	"testing"

	"github.com/cartomix/mixcraft/internal/camelot"
	"github.com/cartomix/mixcraft/internal/decode"
)

// generateScaleRun synthesizes a C-major scale run (with the tonic
// bookending the phrase for emphasis) as a sequence of held sine tones.
func generateScaleRun(sampleRate int) []float64 {
	noteFreqs := []float64{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88, 261.63}
	noteDurSec := 2.0
	total := make([]float64, 0, int(noteDurSec*float64(sampleRate))*len(noteFreqs))

	for _, freq := range noteFreqs {
		n := int(noteDurSec * float64(sampleRate))
		for i := 0; i < n; i++ {
			t := float64(i) / float64(sampleRate)
			v := 0.8*math.Sin(2*math.Pi*freq*t) + 0.2*math.Sin(2*math.Pi*2*freq*t)
			total = append(total, v)
		}
	}
	return total
}

func TestAnalyzeDetectsCMajorFromScaleRun(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: generateScaleRun(sampleRate)}

	res, err := Analyze(pcm)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Key.Mode != camelot.Major {
		t.Errorf("expected major mode for a major scale run, got %s", res.Key.Mode)
	}
	if res.Key.Tonic != camelot.C {
		t.Errorf("expected tonic C, got %s", res.Key.Tonic)
	}
	if res.Camelot.String() != "8B" {
		t.Errorf("expected Camelot 8B for C major, got %s", res.Camelot)
	}
}

func TestAnalyzeCompatibleSetHasFourCells(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: generateScaleRun(sampleRate)}

	res, err := Analyze(pcm)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(res.CamelotCompatible) != 4 {
		t.Errorf("expected 4 compatible cells, got %d", len(res.CamelotCompatible))
	}
}

func TestDetectF0FindsFundamental(t *testing.T) {
	sampleRate := 44100
	freq := 220.0
	frame := make([]float64, 2048)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	f0 := detectF0(frame, sampleRate)
	if math.Abs(f0-freq) > 5 {
		t.Errorf("detectF0 = %.1f, want ~%.1f", f0, freq)
	}
}
