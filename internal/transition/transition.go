// Package transition implements §4.7's transition scorer: given an
// exit cue on one track and an entry cue on another, produces a
// single scored, typed Transition.
package transition

import (
	"math"

	"github.com/cartomix/mixcraft/internal/camelot"
	"github.com/cartomix/mixcraft/internal/model"
)

const (
	bpmToleranceFraction = 0.10
	simBlocks            = 4
	barsPerBlock         = 4
	vocalClashPenalty    = 25
	callResponseBonus    = 25
)

var strategyTable = map[[2]model.Strategy]float64{
	{model.StrategyLoopAnchor, model.StrategyDropSwap}:       100,
	{model.StrategyLoopAnchor, model.StrategyIntroSimple}:    95,
	{model.StrategyDropSwap, model.StrategyDropSwap}:         100,
	{model.StrategyOutroFade, model.StrategyIntroSimple}:     90,
	{model.StrategyDropSwap, model.StrategyBreakdownEntry}:   80,
	{model.StrategyBreakdownEntry, model.StrategyIntroSimple}: 75,
	{model.StrategyOutroFade, model.StrategyDropSwap}:        30,
	{model.StrategyDropSwap, model.StrategyIntroSimple}:      40,
}

// Score evaluates the pairing of trackA's exit cue with trackB's entry
// cue and returns the resulting Transition.
func Score(trackA *model.TrackDescriptor, exit model.CuePoint, trackB *model.TrackDescriptor, entry model.CuePoint) model.Transition {
	if exit.VocalType == model.VocalMelodic && entry.VocalType == model.VocalMelodic {
		return vetoed(exit, entry)
	}
	if trackA.BPM > 0 && math.Abs(trackA.BPM-trackB.BPM)/trackA.BPM > bpmToleranceFraction {
		return vetoed(exit, entry)
	}

	harmonic := harmonicScore(trackA, trackB)
	bpm := bpmScore(trackA.BPM, trackB.BPM)
	energy := energyScore(trackA.Energy, trackB.Energy)

	strategyBase := strategyScore(exit.Strategy, entry.Strategy)
	overlapAdj := overlapAdjustment(exit.SafeDurationMs, entry.SafeDurationMs)
	simPenalty, simBonus, aborted := simulate(trackA, exit, trackB, entry)

	if aborted {
		return vetoed(exit, entry)
	}

	strategyBlend := clip(strategyBase + overlapAdj - float64(simPenalty) + float64(simBonus))

	final := 0.35*harmonic + 0.25*bpm + 0.15*energy + 0.25*strategyBlend
	final = clip(final)

	tType := transitionType(exit, entry)
	curve := suggestedCurve(exit, entry, tType)

	return model.Transition{
		ExitCue:        exit,
		EntryCue:       entry,
		Score:          math.Round(final*100) / 100,
		Type:           tType,
		SuggestedCurve: curve,
	}
}

func vetoed(exit, entry model.CuePoint) model.Transition {
	return model.Transition{ExitCue: exit, EntryCue: entry, Score: 0, Type: model.TransitionCut, SuggestedCurve: model.CurveCut}
}

// harmonicScore implements §4.7 step 2: 100 if B's key sits in A's
// compatible set, 70 if same mode/different number, 10 otherwise, 50
// if either key is unknown.
func harmonicScore(trackA, trackB *model.TrackDescriptor) float64 {
	if trackA.Camelot.Zero() || trackB.Camelot.Zero() {
		return 50
	}
	if camelot.Compatible(trackA.Camelot, trackB.Camelot) {
		return 100
	}
	if camelot.SameLetter(trackA.Camelot, trackB.Camelot) {
		return 70
	}
	return 10
}

func bpmScore(bpmA, bpmB float64) float64 {
	if bpmA <= 0 {
		return 0
	}
	score := 100 * (1 - math.Abs(bpmA-bpmB)/(bpmToleranceFraction*bpmA))
	if score < 0 {
		score = 0
	}
	return score
}

func energyScore(eA, eB float64) float64 {
	diff := eA - eB
	abs := math.Abs(diff)
	switch {
	case abs < 0.10:
		return 100
	case abs < 0.25:
		return 80
	case diff < -0.25:
		return 65
	case diff > 0.25:
		return 40
	default:
		return 60
	}
}

func strategyScore(exitStrategy, entryStrategy model.Strategy) float64 {
	if v, ok := strategyTable[[2]model.Strategy{exitStrategy, entryStrategy}]; ok {
		return v
	}
	return 50
}

func overlapAdjustment(safeA, safeB int64) float64 {
	overlap := safeA
	if safeB < overlap {
		overlap = safeB
	}
	switch {
	case overlap > 16000:
		return 10
	case overlap < 4000:
		return -20
	default:
		return 0
	}
}

// simulate advances both cues across four 4-bar blocks, freezing
// track A's clock when its exit is a LOOP_ANCHOR, and tallies vocal
// clash penalties and call-and-response bonuses per §4.7 step 7.
func simulate(trackA *model.TrackDescriptor, exit model.CuePoint, trackB *model.TrackDescriptor, entry model.CuePoint) (penalty, bonus int, aborted bool) {
	barA := barMs(trackA.BPM)
	barB := barMs(trackB.BPM)
	aPos, bPos := exit.PointMs, entry.PointMs

	prevA, prevB := vocalTypeAt(trackA, aPos), vocalTypeAt(trackB, bPos)

	for i := 0; i < simBlocks; i++ {
		if exit.Strategy != model.StrategyLoopAnchor {
			aPos += int64(barsPerBlock) * int64(barA)
		}
		bPos += int64(barsPerBlock) * int64(barB)

		aType := vocalTypeAt(trackA, aPos)
		bType := vocalTypeAt(trackB, bPos)

		if aType == model.VocalMelodic && bType == model.VocalMelodic {
			return 0, 0, true
		}
		clash := (aType == model.VocalMelodic && bType == model.VocalRhythmic) ||
			(aType == model.VocalRhythmic && bType == model.VocalMelodic)
		if clash {
			penalty += vocalClashPenalty
		}

		if prevA != model.VocalNone && aType == model.VocalNone && prevB == model.VocalNone && bType != model.VocalNone {
			bonus += callResponseBonus
		}

		prevA, prevB = aType, bType
	}
	return penalty, bonus, false
}

func barMs(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return (60000.0 / bpm) * 4
}

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

func transitionType(exit, entry model.CuePoint) model.TransitionType {
	switch {
	case exit.Strategy == model.StrategyDropSwap && entry.Strategy == model.StrategyDropSwap:
		return model.TransitionDoubleDrop
	case exit.Strategy == model.StrategyLoopAnchor:
		return model.TransitionLoopMix
	case exit.Strategy == model.StrategyOutroFade || entry.Strategy == model.StrategyIntroSimple:
		return model.TransitionLongMix
	case entry.Strategy == model.StrategyImpactEntry:
		return model.TransitionCut
	default:
		return model.TransitionQuickMix
	}
}

func suggestedCurve(exit, entry model.CuePoint, tType model.TransitionType) model.Curve {
	switch {
	case tType == model.TransitionDoubleDrop:
		return model.CurveBassSwap
	case entry.Strategy == model.StrategyImpactEntry:
		return model.CurveCut
	case exit.Strategy == model.StrategyOutroFade && entry.Strategy == model.StrategyIntroSimple:
		return model.CurveLinear
	case entry.SuggestedCurve != "":
		return entry.SuggestedCurve
	default:
		return exit.SuggestedCurve
	}
}

func clip(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}
