package sequence

import (
	"testing"

	"github.com/cartomix/mixcraft/internal/camelot"
	"github.com/cartomix/mixcraft/internal/model"
	"github.com/cartomix/mixcraft/internal/transition"
)

func track(hash string, bpm, energy float64, code camelot.Code) *model.TrackDescriptor {
	return &model.TrackDescriptor{
		Hash:              hash,
		DurationMs:        240000,
		BPM:               bpm,
		Energy:            energy,
		Camelot:           code,
		CamelotCompatible: camelot.CompatibleSet(code),
		Timeline: []model.TimelineSegment{
			{Kind: model.SegmentInstrumental, StartMs: 0, EndMs: 240000, HasVocals: false},
		},
	}
}

func plan(hash string) *model.MixPlanEntry {
	exit := model.CuePoint{TrackHash: hash, PointMs: 200000, Strategy: model.StrategyOutroFade, SafeDurationMs: 10000}
	entry := model.CuePoint{TrackHash: hash, PointMs: 5000, Strategy: model.StrategyIntroSimple, SafeDurationMs: 10000}
	return &model.MixPlanEntry{TrackHash: hash, DurationMs: 240000, BestExits: []model.CuePoint{exit}, BestEntries: []model.CuePoint{entry}}
}

func TestPlanVisitsAllTracksWhenFeasible(t *testing.T) {
	cMajor := camelot.FromKey(camelot.C, camelot.Major)
	gMajor := camelot.FromKey(camelot.G, camelot.Major)
	hashes := []string{"a", "b", "c"}
	lib := &Library{
		Descriptors: map[string]*model.TrackDescriptor{
			"a": track("a", 128, 0.5, cMajor),
			"b": track("b", 128, 0.5, gMajor),
			"c": track("c", 128, 0.5, cMajor),
		},
		Plans: map[string]*model.MixPlanEntry{
			"a": plan("a"), "b": plan("b"), "c": plan("c"),
		},
		Memo: transition.NewMemo(),
	}

	session, err := Plan(lib, "a", hashes, 3)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(session.Tracks) != 3 {
		t.Fatalf("expected 3 tracks in session, got %d", len(session.Tracks))
	}
	if session.Tracks[0].TrackHash != "a" {
		t.Errorf("expected session to start at 'a', got %s", session.Tracks[0].TrackHash)
	}
	seen := map[string]bool{}
	for _, e := range session.Tracks {
		seen[e.TrackHash] = true
	}
	for _, h := range hashes {
		if !seen[h] {
			t.Errorf("expected track %s to appear in the session", h)
		}
	}
}

func TestPlanFallsBackToEmergencyCutWhenEveryPairingIsVetoed(t *testing.T) {
	cMajor := camelot.FromKey(camelot.C, camelot.Major)
	lib := &Library{
		Descriptors: map[string]*model.TrackDescriptor{
			"a": track("a", 120, 0.5, cMajor),
			"b": track("b", 200, 0.5, cMajor), // tempo veto against every pairing
		},
		Plans: map[string]*model.MixPlanEntry{
			"a": plan("a"), "b": plan("b"),
		},
		Memo: transition.NewMemo(),
	}

	session, err := Plan(lib, "a", []string{"a", "b"}, 2)
	if err != nil {
		t.Fatalf("expected a 2-track session via emergency CUT, got error: %v", err)
	}
	if len(session.Tracks) != 2 {
		t.Fatalf("expected 2 tracks in session, got %d", len(session.Tracks))
	}
	edge := session.Tracks[1].TransitionFromPrevious
	if edge == nil || edge.Type != model.TransitionCut || edge.Score != 10 {
		t.Fatalf("expected an emergency CUT transition with score 10, got %+v", edge)
	}
}

func TestPlanReturnsErrorWhenFewerThanTwoTracksAreUsable(t *testing.T) {
	cMajor := camelot.FromKey(camelot.C, camelot.Major)
	lib := &Library{
		Descriptors: map[string]*model.TrackDescriptor{
			"a": track("a", 120, 0.5, cMajor),
		},
		Plans: map[string]*model.MixPlanEntry{
			"a": plan("a"),
		},
		Memo: transition.NewMemo(),
	}

	_, err := Plan(lib, "a", []string{"a", "b"}, 2)
	if err == nil {
		t.Fatal("expected an error when a requested track has no known descriptor")
	}
}

func TestPlanSingleTrackSessionHasZeroAverageScore(t *testing.T) {
	cMajor := camelot.FromKey(camelot.C, camelot.Major)
	lib := &Library{
		Descriptors: map[string]*model.TrackDescriptor{"a": track("a", 128, 0.5, cMajor)},
		Plans:       map[string]*model.MixPlanEntry{"a": plan("a")},
		Memo:        transition.NewMemo(),
	}

	session, err := Plan(lib, "a", []string{"a"}, 1)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(session.Tracks) != 1 {
		t.Fatalf("expected a single-track session, got %d", len(session.Tracks))
	}
	if session.Tracks[0].TransitionFromPrevious != nil {
		t.Error("the first track must not carry an incoming transition")
	}
	if session.AvgTransitionScore != 0 {
		t.Errorf("expected average transition score 0 for a single-track session, got %v", session.AvgTransitionScore)
	}
}
