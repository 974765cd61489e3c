package transition

import (
	"testing"

	"github.com/cartomix/mixcraft/internal/camelot"
	"github.com/cartomix/mixcraft/internal/model"
)

func descriptorWithKey(bpm float64, energy float64, code camelot.Code) *model.TrackDescriptor {
	return &model.TrackDescriptor{
		BPM:     bpm,
		Energy:  energy,
		Camelot: code,
		CamelotCompatible: camelot.CompatibleSet(code),
		Timeline: []model.TimelineSegment{
			{Kind: model.SegmentInstrumental, StartMs: 0, EndMs: 600000, HasVocals: false},
		},
	}
}

func TestScoreVetoesBothMelodicVocal(t *testing.T) {
	a := descriptorWithKey(128, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	b := descriptorWithKey(128, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	exit := model.CuePoint{VocalType: model.VocalMelodic, SafeDurationMs: 8000}
	entry := model.CuePoint{VocalType: model.VocalMelodic, SafeDurationMs: 8000}

	got := Score(a, exit, b, entry)
	if got.Score != 0 {
		t.Errorf("expected veto score 0, got %v", got.Score)
	}
}

func TestScoreVetoesFarApartTempos(t *testing.T) {
	a := descriptorWithKey(120, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	b := descriptorWithKey(160, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	exit := model.CuePoint{SafeDurationMs: 8000}
	entry := model.CuePoint{SafeDurationMs: 8000}

	got := Score(a, exit, b, entry)
	if got.Score != 0 {
		t.Errorf("expected tempo veto score 0, got %v", got.Score)
	}
}

func TestScoreCompatibleKeysOutscoreIncompatible(t *testing.T) {
	cMajor := camelot.FromKey(camelot.C, camelot.Major)
	compatible := camelot.FromKey(camelot.G, camelot.Major) // wheel neighbor of 8B
	incompatible := camelot.FromKey(camelot.Db, camelot.Minor)

	a := descriptorWithKey(128, 0.5, cMajor)
	bGood := descriptorWithKey(128, 0.5, compatible)
	bBad := descriptorWithKey(128, 0.5, incompatible)
	exit := model.CuePoint{SafeDurationMs: 8000, Strategy: model.StrategyOutroFade}
	entry := model.CuePoint{SafeDurationMs: 8000, Strategy: model.StrategyIntroSimple}

	good := Score(a, exit, bGood, entry)
	bad := Score(a, exit, bBad, entry)
	if good.Score <= bad.Score {
		t.Errorf("compatible-key pairing should outscore incompatible: good=%v bad=%v", good.Score, bad.Score)
	}
}

func TestScoreDoubleDropType(t *testing.T) {
	a := descriptorWithKey(128, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	b := descriptorWithKey(128, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	exit := model.CuePoint{SafeDurationMs: 8000, Strategy: model.StrategyDropSwap}
	entry := model.CuePoint{SafeDurationMs: 8000, Strategy: model.StrategyDropSwap}

	got := Score(a, exit, b, entry)
	if got.Type != model.TransitionDoubleDrop {
		t.Errorf("expected DOUBLE_DROP type, got %s", got.Type)
	}
	if got.SuggestedCurve != model.CurveBassSwap {
		t.Errorf("expected BASS_SWAP curve for double drop, got %s", got.SuggestedCurve)
	}
}

func TestBestPairingFallsBackToEmergencyCut(t *testing.T) {
	a := descriptorWithKey(120, 0.5, camelot.Code{})
	b := descriptorWithKey(200, 0.5, camelot.Code{}) // tempo veto on every pairing
	exits := []model.CuePoint{{SafeDurationMs: 8000, PointMs: 1000}}
	entries := []model.CuePoint{{SafeDurationMs: 8000, PointMs: 2000}}

	got := BestPairing(a, exits, b, entries)
	if got.Score != emergencyCutScore {
		t.Errorf("expected emergency CUT score %d, got %v", emergencyCutScore, got.Score)
	}
	if got.Type != model.TransitionCut {
		t.Errorf("expected CUT type, got %s", got.Type)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	a := descriptorWithKey(128, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	b := descriptorWithKey(128, 0.5, camelot.FromKey(camelot.C, camelot.Major))
	exit := model.CuePoint{SafeDurationMs: 20000, Strategy: model.StrategyLoopAnchor}
	entry := model.CuePoint{SafeDurationMs: 20000, Strategy: model.StrategyDropSwap}

	got := Score(a, exit, b, entry)
	if got.Score > 100 {
		t.Errorf("score must clip at 100, got %v", got.Score)
	}
}
