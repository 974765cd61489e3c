// Package cues implements §4.6's entry/exit candidate generation for a
// single track descriptor.
package cues

import (
	"math"

	"github.com/cartomix/mixcraft/internal/model"
)

// barMs returns the duration of one 4/4-equivalent bar at the given
// tempo, per the alignment helper's `bar_ms = (60000/bpm) * 4`.
func barMs(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return (60000.0 / bpm) * 4
}

func beatMs(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return 60000.0 / bpm
}

// alignmentFlags reports whether pointMs sits within two beats of the
// nearest bar boundary and the nearest 8-bar boundary, without moving
// the point. Used to annotate candidates that aren't grid-generated.
func alignmentFlags(pointMs int64, downbeatsMs []int64, bpm float64) (alignedBar, aligned8Bar bool) {
	if bpm <= 0 || len(downbeatsMs) == 0 {
		return false, false
	}
	bar := barMs(bpm)
	beat := beatMs(bpm)
	offset := float64(pointMs - downbeatsMs[0])
	tolerance := 2 * beat

	nearestBar := math.Round(offset/bar) * bar
	alignedBar = math.Abs(offset-nearestBar) <= tolerance

	nearest8Bar := math.Round(offset/(8*bar)) * (8 * bar)
	aligned8Bar = math.Abs(offset-nearest8Bar) <= tolerance

	return alignedBar, aligned8Bar
}

// snapTo8BarGrid projects pointMs onto the nearest 8-bar grid line
// (anchored at downbeats[0]) when within two beats of it; otherwise it
// falls back to the nearest single-bar grid line. Returns the snapped
// point and the resulting alignment flags.
func snapTo8BarGrid(pointMs int64, downbeatsMs []int64, bpm float64) (snapped int64, alignedBar, aligned8Bar bool) {
	if bpm <= 0 || len(downbeatsMs) == 0 {
		return pointMs, false, false
	}
	bar := barMs(bpm)
	beat := beatMs(bpm)
	anchor := downbeatsMs[0]
	offset := float64(pointMs - anchor)
	tolerance := 2 * beat

	nearest8Bar := math.Round(offset/(8*bar)) * (8 * bar)
	if math.Abs(offset-nearest8Bar) <= tolerance {
		return anchor + int64(nearest8Bar), true, true
	}

	nearestBar := math.Round(offset/bar) * bar
	return anchor + int64(nearestBar), true, false
}

// snapToBarBoundary projects pointMs onto the nearest single-bar grid
// line, used by the LOOP_ANCHOR candidate.
func snapToBarBoundary(pointMs int64, downbeatsMs []int64, bpm float64) int64 {
	if bpm <= 0 || len(downbeatsMs) == 0 {
		return pointMs
	}
	bar := barMs(bpm)
	anchor := downbeatsMs[0]
	offset := float64(pointMs - anchor)
	nearestBar := math.Round(offset/bar) * bar
	return anchor + int64(nearestBar)
}

// nearestPhrase searches phrasesMs for a boundary within toleranceMs of
// target, returning the snapped point and whether one was found.
func nearestPhrase(phrasesMs []int64, target, toleranceMs int64) (int64, bool) {
	best := target
	bestDist := toleranceMs + 1
	for _, p := range phrasesMs {
		d := p - target
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	if bestDist > toleranceMs {
		return target, false
	}
	return best, true
}

// nextPhraseAtOrAfter returns the first phrase boundary at or after
// target, or target itself if none exists.
func nextPhraseAtOrAfter(phrasesMs []int64, target int64) int64 {
	for _, p := range phrasesMs {
		if p >= target {
			return p
		}
	}
	return target
}

func clipScore(f float64) int {
	if f < 0 {
		f = 0
	}
	if f > 100 {
		f = 100
	}
	return int(math.Round(f))
}

// vocalTypeAt classifies the vocal character of the timeline segment
// covering timeMs, per §4.7's verse/bridge -> MELODIC_VOCAL,
// chorus/outro -> RHYTHMIC_CHANT mapping.
func vocalTypeAt(td *model.TrackDescriptor, timeMs int64) model.VocalType {
	seg := segmentAt(td, timeMs)
	if seg == nil || !seg.HasVocals {
		return model.VocalNone
	}
	switch seg.Kind {
	case model.SegmentVerse, model.SegmentBridge:
		return model.VocalMelodic
	case model.SegmentChorus, model.SegmentOutro:
		return model.VocalRhythmic
	default:
		return model.VocalNone
	}
}

func segmentAt(td *model.TrackDescriptor, timeMs int64) *model.TimelineSegment {
	for i := range td.Timeline {
		s := &td.Timeline[i]
		if timeMs >= s.StartMs && timeMs < s.EndMs {
			return s
		}
	}
	if len(td.Timeline) > 0 && timeMs >= td.Timeline[len(td.Timeline)-1].EndMs {
		return &td.Timeline[len(td.Timeline)-1]
	}
	return nil
}

// hasVocalClash reports whether any timeline segment with has_vocals
// overlaps a window of ±windowMs around pointMs.
func hasVocalClash(td *model.TrackDescriptor, pointMs, windowMs int64) bool {
	lo, hi := pointMs-windowMs, pointMs+windowMs
	for _, s := range td.Timeline {
		if !s.HasVocals {
			continue
		}
		if lo < s.EndMs && hi > s.StartMs {
			return true
		}
	}
	return false
}

var strategyCurve = map[model.Strategy]model.Curve{
	model.StrategyIntroSimple:    model.CurveLinear,
	model.StrategyDropSwap:       model.CurveBassSwap,
	model.StrategyImpactEntry:    model.CurveCut,
	model.StrategyOutroFade:      model.CurveLinear,
	model.StrategyBreakdownEntry: model.CurveLinear,
	model.StrategyLoopAnchor:     model.CurvePowerMix,
	model.StrategyEventSync:      model.CurveLinear,
}

func curveFor(strategy model.Strategy) model.Curve {
	if c, ok := strategyCurve[strategy]; ok {
		return c
	}
	return model.CurveLinear
}
