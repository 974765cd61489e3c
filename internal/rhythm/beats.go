package rhythm

import "math"

// beatTimesFromTempo phase-locks a constant-tempo beat grid to the
// strongest onset within the first 5 seconds, then tiles forward and
// backward across the whole track.
func beatTimesFromTempo(onset []float64, sampleRate, hop int, totalSamples int, bpm float64) []int64 {
	if bpm <= 0 {
		return nil
	}
	frameRate := float64(sampleRate) / float64(hop)
	anchorFrames := int(5.0 * frameRate)
	if anchorFrames > len(onset) {
		anchorFrames = len(onset)
	}

	anchorIdx := 0
	best := -1.0
	for i := 0; i < anchorFrames; i++ {
		if onset[i] > best {
			best = onset[i]
			anchorIdx = i
		}
	}
	anchorSec := float64(anchorIdx) * float64(hop) / float64(sampleRate)
	periodSec := 60.0 / bpm
	durationSec := float64(totalSamples) / float64(sampleRate)

	firstBeat := anchorSec
	for firstBeat-periodSec >= 0 {
		firstBeat -= periodSec
	}

	var beatsMs []int64
	for t := firstBeat; t < durationSec; t += periodSec {
		ms := int64(math.Round(t * 1000))
		if ms < 0 {
			ms = 0
		}
		beatsMs = append(beatsMs, ms)
	}
	return beatsMs
}

// lowPassEnvelope is a one-pole low-pass filter of |x| used by the second
// beat-tracking fallback tier.
func lowPassEnvelope(samples []float64, sampleRate int, cutoffHz float64) []float64 {
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	alpha := dt / (rc + dt)

	out := make([]float64, len(samples))
	prev := 0.0
	for i, s := range samples {
		prev += alpha * (math.Abs(s) - prev)
		out[i] = prev
	}
	return out
}

func pickPeaks(env []float64, threshold float64, minGapSamples int) []int {
	var peaks []int
	lastPeak := -minGapSamples - 1
	for i := 1; i < len(env)-1; i++ {
		if env[i] < threshold {
			continue
		}
		if env[i] >= env[i-1] && env[i] >= env[i+1] && i-lastPeak >= minGapSamples {
			peaks = append(peaks, i)
			lastPeak = i
		}
	}
	return peaks
}

func diffsOf(xs []int) []int {
	if len(xs) < 2 {
		return nil
	}
	out := make([]int, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out = append(out, xs[i]-xs[i-1])
	}
	return out
}

// envelopePeakFallback is §4.2's second fallback tier: a ~200Hz
// low-passed envelope peak-picked at ten descending thresholds, each
// requiring at least 15 peaks.
func envelopePeakFallback(samples []float64, sampleRate int) (bpm float64, beatsMs []int64, ok bool) {
	env := lowPassEnvelope(samples, sampleRate, 200)
	maxEnv := 0.0
	for _, v := range env {
		if v > maxEnv {
			maxEnv = v
		}
	}
	if maxEnv <= 0 {
		return 0, nil, false
	}
	for i := range env {
		env[i] /= maxEnv
	}

	minGap := int(0.2 * float64(sampleRate))
	for th := 0.95; th >= 0.50-1e-9; th -= 0.05 {
		peaks := pickPeaks(env, th, minGap)
		if len(peaks) < 15 {
			continue
		}
		bpmCandidate := dominantBPMFromIntervals(diffsOf(peaks), sampleRate)
		if bpmCandidate <= 0 {
			continue
		}
		beats := make([]int64, len(peaks))
		for i, p := range peaks {
			beats[i] = int64(float64(p) / float64(sampleRate) * 1000)
		}
		return bpmCandidate, beats, true
	}
	return 0, nil, false
}

func mergeClosePositions(positions []int, minGap int) []int {
	if len(positions) == 0 {
		return nil
	}
	out := []int{positions[0]}
	for _, p := range positions[1:] {
		if p-out[len(out)-1] >= minGap {
			out = append(out, p)
		}
	}
	return out
}

// adaptiveThresholdFallback is §4.2's third and final fallback tier:
// 50ms-window RMS energy peaks above 1.5x the mean.
func adaptiveThresholdFallback(samples []float64, sampleRate int) (bpm float64, beatsMs []int64) {
	windowSize := int(0.05 * float64(sampleRate))
	if windowSize < 1 {
		windowSize = 1
	}
	hop := windowSize / 2
	if hop < 1 {
		hop = 1
	}

	var energies []float64
	var positions []int
	for pos := 0; pos+windowSize <= len(samples); pos += hop {
		var sum float64
		for i := pos; i < pos+windowSize; i++ {
			sum += samples[i] * samples[i]
		}
		energies = append(energies, math.Sqrt(sum/float64(windowSize)))
		positions = append(positions, pos+windowSize/2)
	}
	if len(energies) == 0 {
		return 0, nil
	}

	var mean float64
	for _, e := range energies {
		mean += e
	}
	mean /= float64(len(energies))
	threshold := mean * 1.5

	var peakPositions []int
	for i, e := range energies {
		if e <= threshold {
			continue
		}
		if (i == 0 || energies[i-1] <= e) && (i == len(energies)-1 || energies[i+1] < e) {
			peakPositions = append(peakPositions, positions[i])
		}
	}
	peakPositions = mergeClosePositions(peakPositions, int(0.1*float64(sampleRate)))

	beatsMs = make([]int64, len(peakPositions))
	for i, p := range peakPositions {
		beatsMs[i] = int64(float64(p) / float64(sampleRate) * 1000)
	}
	if len(peakPositions) >= 2 {
		bpm = dominantBPMFromIntervals(diffsOf(peakPositions), sampleRate)
	}
	return bpm, beatsMs
}

// beatEnergies samples a ±50ms RMS window around each beat time and
// normalizes to the loudest beat — the per-beat loudness curve meter
// inference folds over.
func beatEnergies(samples []float64, sampleRate int, beatsMs []int64) []float64 {
	halfWindow := int(0.05 * float64(sampleRate))
	out := make([]float64, len(beatsMs))
	maxE := 0.0
	for i, t := range beatsMs {
		center := int(float64(t) / 1000.0 * float64(sampleRate))
		lo, hi := center-halfWindow, center+halfWindow
		if lo < 0 {
			lo = 0
		}
		if hi > len(samples) {
			hi = len(samples)
		}
		if hi <= lo {
			continue
		}
		var sum float64
		for j := lo; j < hi; j++ {
			sum += samples[j] * samples[j]
		}
		out[i] = math.Sqrt(sum / float64(hi-lo))
		if out[i] > maxE {
			maxE = out[i]
		}
	}
	if maxE > 0 {
		for i := range out {
			out[i] /= maxE
		}
	}
	return out
}
