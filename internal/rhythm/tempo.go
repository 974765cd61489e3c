package rhythm

import (
	"math"
	"sort"
)

type tempoCandidate struct {
	bpm   float64
	score float64
}

// tempoCandidates autocorrelates the onset envelope over the 60-200 BPM
// lag range, biasing the correlation score toward tempi near 120 BPM (the
// perceptual "sweet spot"), and returns candidates sorted by score desc.
func tempoCandidates(onset []float64, sampleRate, hop int) []tempoCandidate {
	if len(onset) < 4 {
		return nil
	}
	frameRate := float64(sampleRate) / float64(hop)
	minLag := int(frameRate * 60.0 / 200.0)
	maxLag := int(frameRate * 60.0 / 60.0)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}

	mean := 0.0
	for _, v := range onset {
		mean += v
	}
	mean /= float64(len(onset))
	if mean <= 0 {
		// An all-zero (silent) envelope carries no periodicity.
		return nil
	}
	centered := make([]float64, len(onset))
	for i, v := range onset {
		centered[i] = v - mean
	}

	var candidates []tempoCandidate
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(centered); i++ {
			corr += centered[i] * centered[i+lag]
		}
		bpmApprox := 60.0 * frameRate / float64(lag)
		weight := math.Exp(-0.5 * math.Pow((bpmApprox-120.0)/40.0, 2))
		weightedCorr := corr * (0.8 + 0.2*weight)
		candidates = append(candidates, tempoCandidate{bpm: normalizeBPM(bpmApprox), score: weightedCorr})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	return candidates
}

func normalizeBPM(bpm float64) float64 {
	for bpm < 60 {
		bpm *= 2
	}
	for bpm > 200 {
		bpm /= 2
	}
	return bpm
}

// disambiguateTempo applies §4.2 step 2: if the top two candidates are
// related by 2:1, 3:2, or 4:3 within 10%, prefer the one landing in
// [80,140] BPM, and the lower of the two when both qualify.
func disambiguateTempo(candidates []tempoCandidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	if len(candidates) == 1 {
		return candidates[0].bpm
	}

	a, b := candidates[0].bpm, candidates[1].bpm
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if lo == 0 {
		return candidates[0].bpm
	}
	ratio := hi / lo

	related := false
	for _, r := range []float64{2.0, 1.5, 4.0 / 3.0} {
		if math.Abs(ratio-r)/r < 0.10 {
			related = true
			break
		}
	}
	if !related {
		return candidates[0].bpm
	}

	inRange := func(x float64) bool { return x >= 80 && x <= 140 }
	aIn, bIn := inRange(a), inRange(b)
	switch {
	case aIn && bIn:
		if a < b {
			return a
		}
		return b
	case aIn:
		return a
	case bIn:
		return b
	default:
		return candidates[0].bpm
	}
}

// dominantBPMFromIntervals folds a set of inter-peak sample intervals into
// the 90-180 BPM band (doubling/halving) and returns the most common
// rounded BPM — used by the envelope and adaptive-threshold fallbacks.
func dominantBPMFromIntervals(intervalsSamples []int, sampleRate int) float64 {
	counts := map[int]int{}
	for _, iv := range intervalsSamples {
		if iv <= 0 {
			continue
		}
		bpm := 60.0 * float64(sampleRate) / float64(iv)
		for bpm < 90 {
			bpm *= 2
		}
		for bpm > 180 {
			bpm /= 2
		}
		counts[int(math.Round(bpm))]++
	}
	best, bestCount := 0, 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && (best == 0 || k < best)) {
			best, bestCount = k, c
		}
	}
	return float64(best)
}
