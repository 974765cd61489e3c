// Package rhythm implements §4.2's beat-tracking pipeline: a primary
// onset/autocorrelation tracker with two descending fallback tiers, tempo
// disambiguation, meter inference, downbeats, and phrases.
package rhythm

import (
	"github.com/cartomix/mixcraft/internal/decode"
	"github.com/cartomix/mixcraft/internal/errorsx"
	"github.com/cartomix/mixcraft/internal/model"
)

const (
	frameSize = 2048
	hopSize   = 1024

	minBeatsRequired = 2
)

// Result is the rhythm analyzer's full output.
type Result struct {
	BPM           float64
	Meter         model.Meter
	BeatsMs       []int64
	DownbeatsMs   []int64
	PhrasesMs     []int64
	BeatsLoudness []float64
	FellBack      string // "" (preferred path), "envelope", or "adaptive_threshold"
}

// Analyze runs the three-tier beat tracker against PCM samples and
// derives meter, downbeats, and phrases from the result. It is
// deterministic given identical PCM, per §4.2's closing requirement.
func Analyze(pcm *decode.PCM) (*Result, error) {
	samples := pcm.Samples
	sampleRate := pcm.SampleRate

	bpm, beatsMs, fellBack := track(samples, sampleRate)
	if len(beatsMs) < minBeatsRequired {
		return nil, errorsx.New(errorsx.AnalysisFailed, "rhythm: all beat-tracking tiers failed to find enough beats")
	}

	energies := beatEnergies(samples, sampleRate, beatsMs)
	meter, offset := inferMeter(energies)
	db := downbeats(beatsMs, meter.Numerator, offset)
	if len(db) == 0 {
		db = beatsMs[:1]
	}
	ph := phrases(db)

	return &Result{
		BPM:           bpm,
		Meter:         meter,
		BeatsMs:       beatsMs,
		DownbeatsMs:   db,
		PhrasesMs:     ph,
		BeatsLoudness: energies,
		FellBack:      fellBack,
	}, nil
}

// track runs the preferred onset-based tracker, falling through to the
// two fallback tiers in order when the preceding tier cannot produce a
// usable beat grid.
func track(samples []float64, sampleRate int) (bpm float64, beatsMs []int64, fellBack string) {
	onset := onsetEnvelope(samples, frameSize, hopSize)
	if onset != nil {
		candidates := tempoCandidates(onset, sampleRate, hopSize)
		if len(candidates) > 0 {
			bpm = disambiguateTempo(candidates)
			beatsMs = beatTimesFromTempo(onset, sampleRate, hopSize, len(samples), bpm)
			if len(beatsMs) >= minBeatsRequired {
				return bpm, beatsMs, ""
			}
		}
	}

	if b, beats, ok := envelopePeakFallback(samples, sampleRate); ok && len(beats) >= minBeatsRequired {
		return b, beats, "envelope"
	}

	b, beats := adaptiveThresholdFallback(samples, sampleRate)
	return b, beats, "adaptive_threshold"
}
