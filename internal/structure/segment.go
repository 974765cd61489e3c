// Package structure implements §4.4's structural segmenter and §4.5's
// timeline reconciliation against vocal-activity evidence and an
// optional labeler.
package structure

import (
	"math"

	"github.com/cartomix/mixcraft/internal/decode"
	"github.com/cartomix/mixcraft/internal/model"
)

const frameSeconds = 2.0

type frameClass string

const (
	classSilence frameClass = "silence"
	classNormal  frameClass = "normal"
	classIntense frameClass = "intense"
)

// Segment produces the analyzer-only structural timeline: a run-length
// encoding of 2-second-frame RMS classes. Every run before the first
// intense run is relabeled intro and every run after the last intense
// run outro; with no intense run, the first run becomes intro and the
// last run, if there is more than one, outro.
func Segment(pcm *decode.PCM) []model.TimelineSegment {
	durationMs := pcm.DurationMs()
	if durationMs <= 0 {
		return nil
	}

	classes := classifyFrames(pcm)
	runs := runLength(classes, pcm.SampleRate)
	if len(runs) == 0 {
		return []model.TimelineSegment{{Kind: model.SegmentInstrumental, StartMs: 0, EndMs: durationMs}}
	}

	segments := make([]model.TimelineSegment, len(runs))
	for i, run := range runs {
		kind := kindForClass(run.class)
		segments[i] = model.TimelineSegment{Kind: kind, StartMs: run.startMs, EndMs: run.endMs}
	}

	firstDrop, lastDrop := -1, -1
	for i, seg := range segments {
		if seg.Kind == model.SegmentDrop {
			if firstDrop == -1 {
				firstDrop = i
			}
			lastDrop = i
		}
	}

	last := len(segments) - 1
	if firstDrop == -1 {
		// No intense run at all: fall back to relabeling just the
		// outermost runs, since there's no natural split point between
		// a leading and trailing non-intense span.
		segments[0].Kind = model.SegmentIntro
		if last > 0 {
			segments[last].Kind = model.SegmentOutro
		}
	} else {
		for i := 0; i < firstDrop; i++ {
			segments[i].Kind = model.SegmentIntro
		}
		for i := lastDrop + 1; i <= last; i++ {
			segments[i].Kind = model.SegmentOutro
		}
	}
	segments[last].EndMs = durationMs

	return segments
}

func kindForClass(c frameClass) model.SegmentKind {
	switch c {
	case classSilence:
		return model.SegmentSilence
	case classIntense:
		return model.SegmentDrop
	default:
		return model.SegmentInstrumental
	}
}

type run struct {
	class          frameClass
	startMs, endMs int64
}

func classifyFrames(pcm *decode.PCM) []frameClass {
	frameSamples := int(frameSeconds * float64(pcm.SampleRate))
	if frameSamples <= 0 {
		return nil
	}
	var classes []frameClass
	for pos := 0; pos < len(pcm.Samples); pos += frameSamples {
		end := pos + frameSamples
		if end > len(pcm.Samples) {
			end = len(pcm.Samples)
		}
		rms := frameRMS(pcm.Samples[pos:end])
		switch {
		case rms < 0.01:
			classes = append(classes, classSilence)
		case rms > 0.1:
			classes = append(classes, classIntense)
		default:
			classes = append(classes, classNormal)
		}
	}
	return classes
}

func frameRMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

func runLength(classes []frameClass, sampleRate int) []run {
	if len(classes) == 0 {
		return nil
	}
	var runs []run
	frameMs := int64(frameSeconds * 1000)
	cur := run{class: classes[0], startMs: 0, endMs: frameMs}
	for i := 1; i < len(classes); i++ {
		if classes[i] == cur.class {
			cur.endMs += frameMs
			continue
		}
		runs = append(runs, cur)
		cur = run{class: classes[i], startMs: cur.endMs, endMs: cur.endMs + frameMs}
	}
	runs = append(runs, cur)
	return runs
}
