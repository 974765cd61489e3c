package tonal

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	chromaFrameSize = 4096
	chromaHop       = 2048
	chromaMinHz     = 65.0
	chromaMaxHz     = 4000.0
	a4RefHz         = 261.63 // C4, used as the pitch-class zero reference
)

// chromaVector accumulates a 12-bin pitch-class energy profile across a
// signal by mapping each FFT bin in [65Hz, 4000Hz] onto a pitch class.
func chromaVector(samples []float64, sampleRate int) [12]float64 {
	if len(samples) < chromaFrameSize {
		return [12]float64{}
	}
	fft := fourier.NewFFT(chromaFrameSize)
	window := hannWindow(chromaFrameSize)
	binHz := float64(sampleRate) / float64(chromaFrameSize)

	var chroma [12]float64
	buf := make([]float64, chromaFrameSize)

	for pos := 0; pos+chromaFrameSize <= len(samples); pos += chromaHop {
		for i := 0; i < chromaFrameSize; i++ {
			buf[i] = samples[pos+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, buf)
		for i, c := range coeffs {
			freq := float64(i) * binHz
			if freq < chromaMinHz || freq > chromaMaxHz {
				continue
			}
			mag := math.Hypot(real(c), imag(c))
			chroma[freqToPitchClass(freq)] += mag
		}
	}
	return chroma
}

func freqToPitchClass(freq float64) int {
	pc := int(math.Round(12 * math.Log2(freq/a4RefHz)))
	return ((pc % 12) + 12) % 12
}

func rotateTemplate(template [12]float64, tonic int) [12]float64 {
	var out [12]float64
	for pc := 0; pc < 12; pc++ {
		out[pc] = template[((pc-tonic)%12+12)%12]
	}
	return out
}
