package cues

import (
	"github.com/cartomix/mixcraft/internal/model"
)

const (
	exitWindowFraction = 0.55
	outroFadeLeadMs    = 15000
)

// exits generates §4.6's up-to-five sorted exit candidates, window
// [0.55*duration_ms, duration_ms].
func exits(td *model.TrackDescriptor) []model.CuePoint {
	windowStart := int64(exitWindowFraction * float64(td.DurationMs))
	var out []model.CuePoint

	out = append(out, instrumentalExitCandidates(td, windowStart)...)
	out = append(out, chorusExitCandidates(td, windowStart)...)
	out = append(out, loopAnchorCandidates(td, windowStart)...)

	if len(out) == 0 {
		point := td.DurationMs - outroFadeLeadMs
		out = append(out, makeCue(td, model.CueExit, point, model.StrategyOutroFade, 70, false))
	}

	return sortAndTrim(out, false)
}

func instrumentalExitCandidates(td *model.TrackDescriptor, windowStart int64) []model.CuePoint {
	var out []model.CuePoint
	for _, seg := range td.Timeline {
		if seg.HasVocals || seg.DurationMs() < minCandidateSegmentMs {
			continue
		}
		if seg.StartMs < windowStart {
			continue
		}
		point, aligned := nearestPhrase(td.PhrasesMs, seg.StartMs, phraseSnapToleranceMs)

		score := 75.0
		if seg.Kind == model.SegmentInstrumental {
			score *= 1.5
		}
		if aligned {
			score *= 1.2
		}
		if seg.Kind == model.SegmentOutro {
			score *= 1.4
		}
		if seg.Kind == model.SegmentBreak {
			score *= 1.3
		}
		if td.DurationMs > 0 {
			score += 10 * float64(point) / float64(td.DurationMs)
		}

		strategy := model.StrategyBreakdownEntry
		if seg.Kind == model.SegmentOutro {
			strategy = model.StrategyOutroFade
		}

		out = append(out, makeCue(td, model.CueExit, point, strategy, score, aligned))
	}
	return out
}

func chorusExitCandidates(td *model.TrackDescriptor, windowStart int64) []model.CuePoint {
	var out []model.CuePoint
	for i, seg := range td.Timeline {
		if seg.Kind != model.SegmentChorus {
			continue
		}
		if i+1 >= len(td.Timeline) || td.Timeline[i+1].Kind != model.SegmentInstrumental {
			continue
		}
		if seg.EndMs < windowStart {
			continue
		}
		point, aligned := nearestPhrase(td.PhrasesMs, seg.EndMs, phraseSnapToleranceMs)
		score := 80.0
		if aligned {
			score *= 1.2
		}
		out = append(out, makeCue(td, model.CueExit, point, model.StrategyDropSwap, score, aligned))
	}
	return out
}

func loopAnchorCandidates(td *model.TrackDescriptor, windowStart int64) []model.CuePoint {
	bar := barMs(td.BPM)
	if bar <= 0 {
		return nil
	}
	var out []model.CuePoint
	for _, seg := range td.Timeline {
		if seg.Kind != model.SegmentInstrumental {
			continue
		}
		if seg.StartMs < windowStart {
			continue
		}
		dur := float64(seg.DurationMs())

		var loopBars float64
		var baseScore float64
		switch {
		case dur >= 4*bar:
			loopBars, baseScore = 4, 95
		case dur >= bar:
			loopBars, baseScore = 1, 85
		default:
			continue
		}

		point := snapToBarBoundary(seg.StartMs, td.DownbeatsMs, td.BPM)
		cue := makeCue(td, model.CueExit, point, model.StrategyLoopAnchor, baseScore, false)
		cue.LoopLengthMs = int64(loopBars * bar)
		cue.SafeDurationMs = seg.EndMs - point
		if loopBars == 4 {
			cue.LoopKind = model.LoopFourBar
		} else {
			cue.LoopKind = model.LoopOneBar
		}
		out = append(out, cue)
	}
	return out
}
