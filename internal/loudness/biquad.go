package loudness

import "math"

// biquad is a transposed direct-form-II biquad filter section, used to build the
// ITU-R BS.1770-4 K-weighting cascade (a high-shelf pre-filter followed
// by a high-pass "RLB" filter).
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(b *biquad, in float64) float64 {
	out := b.b0*in + s.z1
	s.z1 = b.b1*in + s.z2 - b.a1*out
	s.z2 = b.b2*in - b.a2*out
	return out
}

// kWeightingFilters builds the two-stage K-weighting cascade for the
// given sample rate, per BS.1770-4's reference coefficients.
func kWeightingFilters(sampleRate int) (pre, rlb biquad) {
	pre = shelfFilter(sampleRate, 1681.974450955533, 3.999843853973347, 0.7071752369554196)
	rlb = highPassFilter(sampleRate, 38.13547087602444, 0.5003270373238773)
	return pre, rlb
}

func shelfFilter(sampleRate int, centerFreq, gainDb, q float64) biquad {
	k := math.Tan(math.Pi * centerFreq / float64(sampleRate))
	vh := math.Pow(10, gainDb/20)
	vb := math.Pow(vh, 0.4996667741545416)

	a0 := 1.0 + k/q + k*k
	b0 := (vh + vb*k/q + k*k) / a0
	b1 := 2 * (k*k - vh) / a0
	b2 := (vh - vb*k/q + k*k) / a0
	a1 := 2 * (k*k - 1) / a0
	a2 := (1 - k/q + k*k) / a0

	return biquad{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

func highPassFilter(sampleRate int, centerFreq, q float64) biquad {
	k := math.Tan(math.Pi * centerFreq / float64(sampleRate))
	a0 := 1.0 + k/q + k*k
	b0 := 1.0
	b1 := -2.0
	b2 := 1.0
	a1 := 2 * (k*k - 1) / a0
	a2 := (1 - k/q + k*k) / a0

	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1, a2: a2}
}
