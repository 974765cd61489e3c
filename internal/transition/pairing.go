package transition

import "github.com/cartomix/mixcraft/internal/model"

const emergencyCutScore = 10

// BestPairing evaluates every exit-cue/entry-cue combination (up to
// 5x5) between trackA and trackB and returns the highest-scoring
// Transition. Ties break on a larger overlap window, then on an
// earlier exit point_ms. If every pairing scores 0, an "emergency
// CUT" is emitted at score 10 using the two top-scored cues (assumed
// to be the first element of each already-sorted list).
func BestPairing(trackA *model.TrackDescriptor, exits []model.CuePoint, trackB *model.TrackDescriptor, entries []model.CuePoint) model.Transition {
	var best model.Transition
	haveBest := false

	for _, exit := range exits {
		for _, entry := range entries {
			candidate := Score(trackA, exit, trackB, entry)
			if !haveBest || better(candidate, best) {
				best = candidate
				haveBest = true
			}
		}
	}

	if !haveBest {
		return model.Transition{Type: model.TransitionCut, SuggestedCurve: model.CurveCut}
	}

	if best.Score <= 0 && len(exits) > 0 && len(entries) > 0 {
		return model.Transition{
			ExitCue:        exits[0],
			EntryCue:       entries[0],
			Score:          emergencyCutScore,
			Type:           model.TransitionCut,
			SuggestedCurve: model.CurveCut,
		}
	}

	return best
}

func better(candidate, best model.Transition) bool {
	if candidate.Score != best.Score {
		return candidate.Score > best.Score
	}
	candidateOverlap := overlapOf(candidate)
	bestOverlap := overlapOf(best)
	if candidateOverlap != bestOverlap {
		return candidateOverlap > bestOverlap
	}
	return candidate.ExitCue.PointMs < best.ExitCue.PointMs
}

func overlapOf(t model.Transition) int64 {
	overlap := t.ExitCue.SafeDurationMs
	if t.EntryCue.SafeDurationMs < overlap {
		overlap = t.EntryCue.SafeDurationMs
	}
	return overlap
}
