package structure

import "math"

// VocalRegion is a contiguous span believed to carry vocal activity,
// used to corroborate or reject labeler-supplied verse/chorus/vocal
// tagging in Reconcile.
type VocalRegion struct {
	StartMs int64
	EndMs   int64
}

const (
	vocalFrameMs  = 300
	vocalLowHz    = 300.0
	vocalHighHz   = 3400.0
	vocalMinRunMs = 300
	vocalMergeGap = 300
)

// DetectVocalActivity band-limits the signal to the vocal formant range
// (300-3400 Hz), then flags 300ms frames whose band energy sits above
// the 55th percentile of all such frames as carrying vocal activity.
// This is a coarse voice-activity proxy, not a singing-detector: it
// responds to anything occupying the midrange, which is deliberately
// conservative since false positives are cheap (they just corroborate
// a labeler claim) while false negatives downgrade a real vocal
// section to bridge.
func DetectVocalActivity(sampleRate int, samples []float64) []VocalRegion {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}
	band := bandpass(sampleRate, samples, vocalLowHz, vocalHighHz)

	frameSamples := int(float64(sampleRate) * vocalFrameMs / 1000.0)
	if frameSamples <= 0 {
		return nil
	}
	var energies []float64
	for pos := 0; pos < len(band); pos += frameSamples {
		end := pos + frameSamples
		if end > len(band) {
			end = len(band)
		}
		energies = append(energies, frameRMS(band[pos:end]))
	}
	if len(energies) == 0 {
		return nil
	}

	threshold := percentileOf(energies, 55)

	var regions []VocalRegion
	var active bool
	var startFrame int
	for i, e := range energies {
		if e >= threshold && !active {
			active = true
			startFrame = i
		} else if e < threshold && active {
			active = false
			regions = append(regions, frameRegion(startFrame, i, frameSamples, sampleRate))
		}
	}
	if active {
		regions = append(regions, frameRegion(startFrame, len(energies), frameSamples, sampleRate))
	}

	return mergeAndFilter(regions)
}

func frameRegion(startFrame, endFrame, frameSamples, sampleRate int) VocalRegion {
	startMs := int64(startFrame) * int64(frameSamples) * 1000 / int64(sampleRate)
	endMs := int64(endFrame) * int64(frameSamples) * 1000 / int64(sampleRate)
	return VocalRegion{StartMs: startMs, EndMs: endMs}
}

func mergeAndFilter(regions []VocalRegion) []VocalRegion {
	if len(regions) == 0 {
		return nil
	}
	merged := []VocalRegion{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.StartMs-last.EndMs <= vocalMergeGap {
			last.EndMs = r.EndMs
			continue
		}
		merged = append(merged, r)
	}

	var out []VocalRegion
	for _, r := range merged {
		if r.EndMs-r.StartMs >= vocalMinRunMs {
			out = append(out, r)
		}
	}
	return out
}

func percentileOf(xs []float64, pct float64) float64 {
	sorted := append([]float64(nil), xs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return percentile(sorted, pct)
}

func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
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

// bandpass cascades a first-order high-pass and a first-order low-pass,
// both simple one-pole RC-equivalent filters — sufficient to isolate
// the vocal formant band for an energy-threshold detector without
// pulling in the full biquad cascade the loudness meter uses.
func bandpass(sampleRate int, samples []float64, lowHz, highHz float64) []float64 {
	hp := onePoleHighPass(sampleRate, samples, lowHz)
	return onePoleLowPass(sampleRate, hp, highHz)
}

func onePoleHighPass(sampleRate int, samples []float64, cutoffHz float64) []float64 {
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	alpha := rc / (rc + dt)
	out := make([]float64, len(samples))
	var prevIn, prevOut float64
	for i, x := range samples {
		y := alpha * (prevOut + x - prevIn)
		out[i] = y
		prevIn, prevOut = x, y
	}
	return out
}

func onePoleLowPass(sampleRate int, samples []float64, cutoffHz float64) []float64 {
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	alpha := dt / (rc + dt)
	out := make([]float64, len(samples))
	var prevOut float64
	for i, x := range samples {
		y := prevOut + alpha*(x-prevOut)
		out[i] = y
		prevOut = y
	}
	return out
}
