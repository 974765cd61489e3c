// Package tonal implements §4.3's key/Camelot detection: a chroma-based
// estimator over four overlapping anchors, with a pitch-histogram
// fallback when correlation strength is weak.
package tonal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cartomix/mixcraft/internal/camelot"
	"github.com/cartomix/mixcraft/internal/decode"
	"github.com/cartomix/mixcraft/internal/model"
)

// Krumhansl-Schmuckler key profiles.
var majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
var minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}

// Diatonic scale masks (semitone steps from the tonic), used by the
// pitch-histogram fallback.
var majorScaleMask = [12]float64{1, 0, 1, 0, 1, 1, 0, 1, 0, 1, 0, 1}
var minorScaleMask = [12]float64{1, 0, 1, 1, 0, 1, 0, 1, 1, 0, 1, 0}

const anchorDurationSec = 15.0
const weakKeyThreshold = 0.35

var anchorFractions = []float64{0.20, 0.35, 0.50, 0.80}

// Result is the tonal analyzer's output.
type Result struct {
	Key               model.Key
	Camelot           camelot.Code
	CamelotCompatible []camelot.Code
	UsedFallback      bool
}

type keyCandidate struct {
	tonic    camelot.PitchClass
	mode     camelot.Mode
	strength float64
}

// Analyze estimates the musical key of pcm and maps it onto the Camelot
// wheel.
func Analyze(pcm *decode.PCM) (*Result, error) {
	best := analyzeAnchors(pcm)
	usedFallback := false
	if best.strength < weakKeyThreshold {
		best = fallbackHistogram(pcm)
		usedFallback = true
	}

	code := camelot.FromKey(best.tonic, best.mode)
	return &Result{
		Key: model.Key{
			Tonic:    best.tonic,
			Mode:     best.mode,
			Strength: clamp01(best.strength),
		},
		Camelot:           code,
		CamelotCompatible: camelot.CompatibleSet(code),
		UsedFallback:      usedFallback,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func analyzeAnchors(pcm *decode.PCM) keyCandidate {
	durationSec := float64(len(pcm.Samples)) / float64(pcm.SampleRate)

	groups := map[string]*struct {
		tonic camelot.PitchClass
		mode  camelot.Mode
		sum   float64
		count int
	}{}

	for _, frac := range anchorFractions {
		anchor := extractAnchor(pcm.Samples, pcm.SampleRate, durationSec, frac)
		if len(anchor) < chromaFrameSize {
			continue
		}
		filtered := highPass(anchor, pcm.SampleRate, 100)
		peakNormalize(filtered, 0.99)
		chroma := chromaVector(filtered, pcm.SampleRate)

		cand := bestKeyForChroma(chroma, majorProfile, minorProfile)
		key := fmt.Sprintf("%d-%s", cand.tonic, cand.mode)
		g, ok := groups[key]
		if !ok {
			g = &struct {
				tonic camelot.PitchClass
				mode  camelot.Mode
				sum   float64
				count int
			}{tonic: cand.tonic, mode: cand.mode}
			groups[key] = g
		}
		g.sum += cand.strength
		g.count++
	}

	best := keyCandidate{strength: -2}
	for _, g := range groups {
		avg := g.sum / float64(g.count)
		if avg > best.strength {
			best = keyCandidate{tonic: g.tonic, mode: g.mode, strength: avg}
		}
	}
	if best.strength == -2 {
		return keyCandidate{tonic: camelot.C, mode: camelot.Major, strength: 0}
	}
	return best
}

func extractAnchor(samples []float64, sampleRate int, durationSec, frac float64) []float64 {
	center := frac * durationSec
	start := center - anchorDurationSec/2
	if start < 0 {
		start = 0
	}
	end := start + anchorDurationSec
	if end > durationSec {
		end = durationSec
		start = math.Max(0, end-anchorDurationSec)
	}
	startIdx := int(start * float64(sampleRate))
	endIdx := int(end * float64(sampleRate))
	if endIdx > len(samples) {
		endIdx = len(samples)
	}
	if startIdx >= endIdx {
		return nil
	}
	return samples[startIdx:endIdx]
}

func bestKeyForChroma(chroma [12]float64, majorTemplate, minorTemplate [12]float64) keyCandidate {
	best := keyCandidate{strength: -2}
	chromaSlice := chroma[:]
	for tonic := 0; tonic < 12; tonic++ {
		major := rotateTemplate(majorTemplate, tonic)
		corrMajor := stat.Correlation(major[:], chromaSlice, nil)
		if corrMajor > best.strength {
			best = keyCandidate{tonic: camelot.PitchClass(tonic), mode: camelot.Major, strength: corrMajor}
		}
		minor := rotateTemplate(minorTemplate, tonic)
		corrMinor := stat.Correlation(minor[:], chromaSlice, nil)
		if corrMinor > best.strength {
			best = keyCandidate{tonic: camelot.PitchClass(tonic), mode: camelot.Minor, strength: corrMinor}
		}
	}
	return best
}

// fallbackHistogram is run when chroma correlation is too weak to trust:
// per-frame fundamental-frequency detection folded into a pitch-class
// histogram, matched against diatonic scale masks.
func fallbackHistogram(pcm *decode.PCM) keyCandidate {
	const frameSize = 2048
	const hop = 1024

	var histogram [12]float64
	for pos := 0; pos+frameSize <= len(pcm.Samples); pos += hop {
		f0 := detectF0(pcm.Samples[pos:pos+frameSize], pcm.SampleRate)
		if f0 <= 0 {
			continue
		}
		histogram[freqToPitchClass(f0)]++
	}

	var total float64
	for _, v := range histogram {
		total += v
	}
	if total > 0 {
		for i := range histogram {
			histogram[i] /= total
		}
	}

	return bestKeyForChroma(histogram, majorScaleMask, minorScaleMask)
}

// detectF0 finds the dominant periodicity in [80, 1000] Hz via
// time-domain autocorrelation.
func detectF0(frame []float64, sampleRate int) float64 {
	const minFreq, maxFreq = 80.0, 1000.0
	maxLag := int(float64(sampleRate) / minFreq)
	minLag := int(float64(sampleRate) / maxFreq)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return float64(sampleRate) / float64(bestLag)
}
