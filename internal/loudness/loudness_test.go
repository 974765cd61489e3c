package loudness

import (
	"math"
	"testing"

	"github.com/cartomix/mixcraft/internal/decode"
)

func sineSamples(sampleRate int, freq, amplitude, durationSec float64) []float64 {
	n := int(durationSec * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestAnalyzeLouderSignalHasHigherLUFS(t *testing.T) {
	sampleRate := 44100
	quiet := &decode.PCM{SampleRate: sampleRate, Samples: sineSamples(sampleRate, 1000, 0.05, 5)}
	loud := &decode.PCM{SampleRate: sampleRate, Samples: sineSamples(sampleRate, 1000, 0.5, 5)}

	rQuiet := Analyze(quiet, 120)
	rLoud := Analyze(loud, 120)

	if rLoud.IntegratedLUFS <= rQuiet.IntegratedLUFS {
		t.Errorf("louder signal should have higher LUFS: loud=%.2f quiet=%.2f", rLoud.IntegratedLUFS, rQuiet.IntegratedLUFS)
	}
}

func TestEnergyBoundedZeroOne(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: sineSamples(sampleRate, 440, 0.9, 3)}
	r := Analyze(pcm, 128)
	if r.Energy < 0 || r.Energy > 1 {
		t.Errorf("energy %f out of [0,1]", r.Energy)
	}
	if r.Danceability < 0 || r.Danceability > 1 {
		t.Errorf("danceability %f out of [0,1]", r.Danceability)
	}
}

func TestDanceabilityPeaksNear125BPM(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: sineSamples(sampleRate, 440, 0.5, 3)}
	near := Analyze(pcm, 125)
	far := Analyze(pcm, 60)
	if near.Danceability < far.Danceability {
		t.Errorf("125 BPM should score at least as danceable as 60 BPM: near=%f far=%f", near.Danceability, far.Danceability)
	}
}

func TestMoodIsNonEmpty(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: sineSamples(sampleRate, 440, 0.9, 3)}
	r := Analyze(pcm, 128)
	if r.Mood == "" {
		t.Error("expected a non-empty mood label")
	}
}

func TestSilenceYieldsAbsoluteGateFloor(t *testing.T) {
	pcm := &decode.PCM{SampleRate: 44100, Samples: make([]float64, 44100*3)}
	r := Analyze(pcm, 120)
	if r.IntegratedLUFS > -69 {
		t.Errorf("silence should sit at the absolute gate floor, got %f", r.IntegratedLUFS)
	}
}
