package rhythm

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// onsetEnvelope computes a spectral-flux novelty curve: the per-frame sum
// of positive magnitude increases relative to the previous frame. This is
// the preferred beat-tracking feature (§4.2 step 1).
func onsetEnvelope(samples []float64, frameSize, hop int) []float64 {
	if len(samples) < frameSize {
		return nil
	}
	fft := fourier.NewFFT(frameSize)
	window := hannWindow(frameSize)
	buf := make([]float64, frameSize)

	var prevMag []float64
	var onset []float64

	for pos := 0; pos+frameSize <= len(samples); pos += hop {
		for i := 0; i < frameSize; i++ {
			buf[i] = samples[pos+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, buf)

		if prevMag == nil {
			prevMag = make([]float64, len(coeffs))
		}

		var flux float64
		for i, c := range coeffs {
			mag := math.Hypot(real(c), imag(c))
			if diff := mag - prevMag[i]; diff > 0 {
				flux += diff
			}
			prevMag[i] = mag
		}
		onset = append(onset, flux)
	}
	return onset
}
