package cues

import (
	"github.com/cartomix/mixcraft/internal/model"
)

const (
	phraseSnapToleranceMs = 2000
	minCandidateSegmentMs = 4000
	introCutoffMs         = 10000
	dropLeadMs            = 16000
	impactWindowMs        = 5000
	vocalClashWindowMs    = 2000
)

// entries generates §4.6's up-to-five sorted entry candidates, window
// [0, 0.40*duration_ms].
func entries(td *model.TrackDescriptor) []model.CuePoint {
	windowEnd := int64(0.40 * float64(td.DurationMs))
	var out []model.CuePoint

	out = append(out, nonVocalEntryCandidates(td, windowEnd)...)
	if c, ok := firstVerseAfterInstrumental(td, windowEnd); ok {
		out = append(out, c)
	}
	out = append(out, dropEntryCandidates(td, windowEnd)...)

	if len(out) == 0 {
		point := nextPhraseAtOrAfter(td.PhrasesMs, 0)
		out = append(out, makeCue(td, model.CueEntry, point, model.StrategyIntroSimple, 50, true))
	}

	return sortAndTrim(out, true)
}

func nonVocalEntryCandidates(td *model.TrackDescriptor, windowEnd int64) []model.CuePoint {
	var out []model.CuePoint
	for _, seg := range td.Timeline {
		if seg.HasVocals || seg.DurationMs() < minCandidateSegmentMs {
			continue
		}
		point, aligned := nearestPhrase(td.PhrasesMs, seg.StartMs, phraseSnapToleranceMs)
		if point > windowEnd {
			continue
		}

		score := 75.0
		if seg.Kind == model.SegmentInstrumental {
			score *= 1.5
		}
		if aligned {
			score *= 1.2
		}
		if seg.Kind == model.SegmentIntro {
			score *= 1.4
		}
		if seg.Kind == model.SegmentBreak {
			score *= 1.3
		}

		strategy := model.StrategyBreakdownEntry
		if seg.Kind == model.SegmentIntro || point < introCutoffMs {
			strategy = model.StrategyIntroSimple
		}

		out = append(out, makeCue(td, model.CueEntry, point, strategy, score, aligned))
	}
	return out
}

func firstVerseAfterInstrumental(td *model.TrackDescriptor, windowEnd int64) (model.CuePoint, bool) {
	for i, seg := range td.Timeline {
		if seg.Kind != model.SegmentVerse || !seg.HasVocals {
			continue
		}
		if i == 0 || td.Timeline[i-1].Kind != model.SegmentInstrumental {
			continue
		}
		point, aligned := nearestPhrase(td.PhrasesMs, seg.StartMs, phraseSnapToleranceMs)
		if point > windowEnd {
			return model.CuePoint{}, false
		}
		score := 55.0
		if aligned {
			score *= 1.2
		}
		return makeCue(td, model.CueEntry, point, model.StrategyBreakdownEntry, score, aligned), true
	}
	return model.CuePoint{}, false
}

func dropEntryCandidates(td *model.TrackDescriptor, windowEnd int64) []model.CuePoint {
	var drop *model.TimelineSegment
	for i := range td.Timeline {
		s := &td.Timeline[i]
		if s.Kind == model.SegmentDrop && s.StartMs <= windowEnd {
			drop = s
			break
		}
	}
	if drop == nil {
		return nil
	}

	var out []model.CuePoint

	swapPoint := drop.StartMs - dropLeadMs
	snapped, alignedBar, aligned8Bar := snapTo8BarGrid(swapPoint, td.DownbeatsMs, td.BPM)
	score := 90.0 * 2.0
	if hasVocalClash(td, snapped, vocalClashWindowMs) {
		score *= 0.1
	}
	if aligned8Bar {
		score *= 1.15
	}
	cue := makeCue(td, model.CueEntry, snapped, model.StrategyDropSwap, score, false)
	cue.AlignedToBar, cue.AlignedTo8Bar = alignedBar, aligned8Bar
	out = append(out, cue)

	if drop.StartMs <= impactWindowMs {
		score := 65.0
		if !hasVocalClash(td, drop.StartMs, vocalClashWindowMs) {
			score += 15
		}
		out = append(out, makeCue(td, model.CueEntry, drop.StartMs, model.StrategyImpactEntry, score, false))
	}

	return out
}

func makeCue(td *model.TrackDescriptor, cueType model.CueType, pointMs int64, strategy model.Strategy, rawScore float64, phraseAligned bool) model.CuePoint {
	if pointMs < 0 {
		pointMs = 0
	}
	if pointMs > td.DurationMs {
		pointMs = td.DurationMs
	}
	alignedBar, aligned8Bar := alignmentFlags(pointMs, td.DownbeatsMs, td.BPM)
	seg := segmentAt(td, pointMs)
	var kind model.SegmentKind
	hasVocal := false
	if seg != nil {
		kind = seg.Kind
		hasVocal = seg.HasVocals
	}

	return model.CuePoint{
		TrackHash:       td.Hash,
		PointMs:         pointMs,
		Type:            cueType,
		Strategy:        strategy,
		Score:           clipScore(rawScore),
		HasVocalOverlap: hasVocal,
		AlignedToPhrase: phraseAligned,
		AlignedToBar:    alignedBar,
		AlignedTo8Bar:   aligned8Bar,
		SectionKind:     kind,
		VocalType:       vocalTypeAt(td, pointMs),
		FreqFocus:       model.FreqFull,
		SuggestedCurve:  curveFor(strategy),
	}
}

func sortAndTrim(cues []model.CuePoint, earlierWins bool) []model.CuePoint {
	sorted := append([]model.CuePoint(nil), cues...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0; j-- {
			if !lessCue(sorted[j-1], sorted[j], earlierWins) {
				break
			}
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	return sorted
}

// lessCue reports whether b should sort before a: higher score first,
// ties broken by earlier point_ms (entries) or later point_ms (exits).
func lessCue(a, b model.CuePoint, earlierWins bool) bool {
	if a.Score != b.Score {
		return b.Score > a.Score
	}
	if earlierWins {
		return b.PointMs < a.PointMs
	}
	return b.PointMs > a.PointMs
}
