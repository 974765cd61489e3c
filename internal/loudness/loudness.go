// Package loudness computes §4.4's loudness, energy, danceability, and
// mood fields using an ITU-R BS.1770-4-style K-weighted integrated
// loudness meter.
package loudness

import (
	"math"
	"sort"

	"github.com/cartomix/mixcraft/internal/decode"
)

// Result bundles the loudness/energy fields of a track descriptor.
type Result struct {
	IntegratedLUFS     float64
	LoudnessRangeLU    float64
	DynamicComplexity  float64
	Energy             float64
	Danceability       float64
	Mood               string
}

const (
	blockSeconds = 0.4
	hopSeconds   = 0.1
	absoluteGate = -70.0
)

// Analyze runs the K-weighted loudness meter plus the spec's
// energy/danceability/mood heuristics. bpm is needed for the
// danceability term.
func Analyze(pcm *decode.PCM, bpm float64) *Result {
	powers := blockPowers(pcm)
	integrated := integratedLoudness(powers)
	lra := loudnessRange(powers)
	complexity := dynamicComplexity(powers, integrated)

	rms := rmsOf(pcm.Samples)
	energy := energyFromRMS(rms)
	danceability := danceabilityOf(bpm, energy)
	mood := moodOf(energy, bpm)

	return &Result{
		IntegratedLUFS:    integrated,
		LoudnessRangeLU:   lra,
		DynamicComplexity: complexity,
		Energy:            energy,
		Danceability:      danceability,
		Mood:              mood,
	}
}

func blockPowers(pcm *decode.PCM) []float64 {
	pre, rlb := kWeightingFilters(pcm.SampleRate)
	var preState, rlbState biquadState

	filtered := make([]float64, len(pcm.Samples))
	for i, x := range pcm.Samples {
		p := preState.process(&pre, x)
		filtered[i] = rlbState.process(&rlb, p)
	}

	blockSize := int(blockSeconds * float64(pcm.SampleRate))
	hopSize := int(hopSeconds * float64(pcm.SampleRate))
	if blockSize <= 0 || hopSize <= 0 || len(filtered) < blockSize {
		return nil
	}

	var powers []float64
	for pos := 0; pos+blockSize <= len(filtered); pos += hopSize {
		var sum float64
		for i := pos; i < pos+blockSize; i++ {
			sum += filtered[i] * filtered[i]
		}
		powers = append(powers, sum/float64(blockSize))
	}
	return powers
}

func loudnessOf(power float64) float64 {
	return -0.691 + 10*math.Log10(power+1e-12)
}

// integratedLoudness applies BS.1770's two-pass gating: an absolute gate
// at -70 LUFS, then a relative gate 10 LU below the mean of the
// absolute-gated blocks.
func integratedLoudness(powers []float64) float64 {
	if len(powers) == 0 {
		return absoluteGate
	}
	var passA []float64
	for _, p := range powers {
		if loudnessOf(p) >= absoluteGate {
			passA = append(passA, p)
		}
	}
	if len(passA) == 0 {
		return absoluteGate
	}
	meanA := meanOf(passA)
	relativeGate := loudnessOf(meanA) - 10

	var passB []float64
	for _, p := range passA {
		if loudnessOf(p) >= relativeGate {
			passB = append(passB, p)
		}
	}
	if len(passB) == 0 {
		return loudnessOf(meanA)
	}
	return loudnessOf(meanOf(passB))
}

// loudnessRange gates at -70 LUFS absolute and 20 LU relative, then
// reports the 95th-minus-10th percentile spread of per-block loudness.
func loudnessRange(powers []float64) float64 {
	if len(powers) == 0 {
		return 0
	}
	var passA []float64
	for _, p := range powers {
		if loudnessOf(p) >= absoluteGate {
			passA = append(passA, p)
		}
	}
	if len(passA) == 0 {
		return 0
	}
	meanA := meanOf(passA)
	relativeGate := loudnessOf(meanA) - 20

	var loudnessValues []float64
	for _, p := range passA {
		if l := loudnessOf(p); l >= relativeGate {
			loudnessValues = append(loudnessValues, l)
		}
	}
	if len(loudnessValues) < 2 {
		return 0
	}
	sort.Float64s(loudnessValues)
	p10 := percentile(loudnessValues, 10)
	p95 := percentile(loudnessValues, 95)
	return p95 - p10
}

func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := pct / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// dynamicComplexity is the mean absolute deviation of per-block loudness
// from the overall integrated loudness, a Mixxx-style complexity score.
func dynamicComplexity(powers []float64, integrated float64) float64 {
	if len(powers) == 0 {
		return 0
	}
	var sum float64
	for _, p := range powers {
		sum += math.Abs(loudnessOf(p) - integrated)
	}
	return sum / float64(len(powers))
}

func rmsOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// energyFromRMS implements §4.4's `1 − exp(−4·rms)` capped at 1.
func energyFromRMS(rms float64) float64 {
	e := 1 - math.Exp(-4*rms)
	if e > 1 {
		e = 1
	}
	if e < 0 {
		e = 0
	}
	return e
}

// danceabilityOf blends a BPM-distance-from-125 term (60%) with energy
// (40%).
func danceabilityOf(bpm, energy float64) float64 {
	bpmTerm := 1 - math.Abs(bpm-125)/125
	if bpmTerm < 0 {
		bpmTerm = 0
	}
	if bpmTerm > 1 {
		bpmTerm = 1
	}
	d := 0.6*bpmTerm + 0.4*energy
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	return d
}

// moodOf derives a coarse mood label from (energy, BPM) thresholds, used
// when no dedicated mood/valence-arousal extractor is available.
func moodOf(energy, bpm float64) string {
	switch {
	case energy > 0.66 && bpm > 126:
		return "euphoric"
	case energy > 0.66:
		return "intense"
	case energy < 0.33 && bpm < 100:
		return "chill"
	case energy < 0.33:
		return "melancholic"
	default:
		return "groovy"
	}
}
