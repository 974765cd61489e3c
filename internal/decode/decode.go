// Package decode turns WAV (integer PCM or 32-bit float) audio bytes into
// a single mono float64 channel at a fixed sample rate, and provides a
// windowed frame iterator over the result for frequency-domain analyses.
// Compressed formats are not decoded; they fail with DECODE_FAILED.
package decode

import (
	"bufio"
	"io"
	"math"

	"github.com/cartomix/mixcraft/internal/errorsx"
)

// DefaultSampleRate is the rate every analyzer downstream of decode
// assumes, per the data model's recommendation.
const DefaultSampleRate = 44100

// PCM is a decoded mono audio buffer.
type PCM struct {
	SampleRate int
	Samples    []float64 // in [-1, 1] after normalization
}

// DurationMs returns the buffer's length in integer milliseconds.
func (p *PCM) DurationMs() int64 {
	if p.SampleRate == 0 {
		return 0
	}
	return int64(float64(len(p.Samples)) / float64(p.SampleRate) * 1000.0)
}

// Decode sniffs the container and decodes it into mono PCM resampled to
// targetSampleRate. Only WAV (PCM/float) is supported natively; any other
// container fails with errorsx.DecodeFailed, matching §4.1's contract that
// unsupported codecs surface DECODE_FAILED rather than panicking.
func Decode(r io.Reader, targetSampleRate int) (*PCM, error) {
	if targetSampleRate <= 0 {
		targetSampleRate = DefaultSampleRate
	}

	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.DecodeFailed, err)
	}

	var pcm *PCM
	switch string(magic) {
	case "RIFF":
		pcm, err = decodeWAV(br)
	default:
		return nil, errorsx.New(errorsx.DecodeFailed, "unsupported or truncated audio container")
	}
	if err != nil {
		return nil, err
	}

	if pcm.SampleRate != targetSampleRate {
		pcm = Resample(pcm, targetSampleRate)
	}
	return pcm, nil
}

// Resample performs linear-interpolation resampling — adequate for the
// fixed-rate analysis pipeline; it is not used for audible playback.
func Resample(pcm *PCM, targetRate int) *PCM {
	if pcm.SampleRate == targetRate || len(pcm.Samples) == 0 {
		return &PCM{SampleRate: targetRate, Samples: append([]float64(nil), pcm.Samples...)}
	}
	ratio := float64(pcm.SampleRate) / float64(targetRate)
	outLen := int(float64(len(pcm.Samples)) / ratio)
	out := make([]float64, outLen)
	for i := range out {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)
		if idx+1 < len(pcm.Samples) {
			out[i] = pcm.Samples[idx]*(1-frac) + pcm.Samples[idx+1]*frac
		} else if idx < len(pcm.Samples) {
			out[i] = pcm.Samples[idx]
		}
	}
	return &PCM{SampleRate: targetRate, Samples: out}
}

// Normalize scales the buffer's RMS toward targetDBFS (e.g. -14) when
// requested, then hard-limits any remaining peaks to ±1.0.
func Normalize(pcm *PCM, targetDBFS float64) {
	if len(pcm.Samples) == 0 {
		return
	}
	var sumSq float64
	for _, s := range pcm.Samples {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(len(pcm.Samples)))
	if rms <= 1e-9 {
		return
	}
	targetRMS := math.Pow(10, targetDBFS/20.0)
	gain := targetRMS / rms
	for i, s := range pcm.Samples {
		v := s * gain
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		pcm.Samples[i] = v
	}
}
