package cues

import (
	"testing"

	"github.com/cartomix/mixcraft/internal/model"
)

func fourMinuteDescriptor() *model.TrackDescriptor {
	duration := int64(240000)
	bpm := 128.0
	var beats []int64
	for t := int64(0); t < duration; t += int64(60000 / bpm) {
		beats = append(beats, t)
	}
	var downbeats []int64
	for i, b := range beats {
		if i%4 == 0 {
			downbeats = append(downbeats, b)
		}
	}
	var phrases []int64
	for i, d := range downbeats {
		if i%8 == 0 {
			phrases = append(phrases, d)
		}
	}

	timeline := []model.TimelineSegment{
		{Kind: model.SegmentIntro, StartMs: 0, EndMs: 16000, HasVocals: false},
		{Kind: model.SegmentVerse, StartMs: 16000, EndMs: 60000, HasVocals: true},
		{Kind: model.SegmentChorus, StartMs: 60000, EndMs: 90000, HasVocals: true},
		{Kind: model.SegmentInstrumental, StartMs: 90000, EndMs: 100000, HasVocals: false},
		{Kind: model.SegmentDrop, StartMs: 100000, EndMs: 130000, HasVocals: false},
		{Kind: model.SegmentVerse, StartMs: 130000, EndMs: 170000, HasVocals: true},
		{Kind: model.SegmentChorus, StartMs: 170000, EndMs: 200000, HasVocals: true},
		{Kind: model.SegmentInstrumental, StartMs: 200000, EndMs: 215000, HasVocals: false},
		{Kind: model.SegmentOutro, StartMs: 215000, EndMs: duration, HasVocals: false},
	}

	return &model.TrackDescriptor{
		Hash:        "testhash",
		DurationMs:  duration,
		BPM:         bpm,
		BeatsMs:     beats,
		DownbeatsMs: downbeats,
		PhrasesMs:   phrases,
		Timeline:    timeline,
	}
}

func TestEntriesWithinSearchWindow(t *testing.T) {
	td := fourMinuteDescriptor()
	windowEnd := int64(0.40 * float64(td.DurationMs))

	list := entries(td)
	if len(list) == 0 {
		t.Fatal("expected at least one entry candidate")
	}
	for _, c := range list {
		if c.PointMs > windowEnd {
			t.Errorf("entry point %d exceeds search window end %d", c.PointMs, windowEnd)
		}
		if c.Score < 0 || c.Score > 100 {
			t.Errorf("entry score %d out of [0,100]", c.Score)
		}
	}
}

func TestEntriesSortedDescendingByScore(t *testing.T) {
	td := fourMinuteDescriptor()
	list := entries(td)
	for i := 1; i < len(list); i++ {
		if list[i].Score > list[i-1].Score {
			t.Errorf("entries not sorted descending at index %d: %d > %d", i, list[i].Score, list[i-1].Score)
		}
	}
}

func TestEntriesAtMostFive(t *testing.T) {
	td := fourMinuteDescriptor()
	if len(entries(td)) > 5 {
		t.Errorf("expected at most 5 entries, got %d", len(entries(td)))
	}
}

func TestExitsWithinSearchWindow(t *testing.T) {
	td := fourMinuteDescriptor()
	windowStart := int64(0.55 * float64(td.DurationMs))

	list := exits(td)
	if len(list) == 0 {
		t.Fatal("expected at least one exit candidate")
	}
	for _, c := range list {
		if c.PointMs < windowStart {
			t.Errorf("exit point %d precedes search window start %d", c.PointMs, windowStart)
		}
	}
}

func TestExitsAtMostFive(t *testing.T) {
	td := fourMinuteDescriptor()
	if len(exits(td)) > 5 {
		t.Errorf("expected at most 5 exits, got %d", len(exits(td)))
	}
}

func TestPlanPopulatesBothLists(t *testing.T) {
	td := fourMinuteDescriptor()
	plan := Plan(td)
	if plan.TrackHash != td.Hash {
		t.Errorf("expected track hash %q, got %q", td.Hash, plan.TrackHash)
	}
	if len(plan.BestEntries) == 0 || len(plan.BestExits) == 0 {
		t.Error("expected non-empty entry and exit lists")
	}
}

func TestNoFallbackCandidatesStillProducesIntroSimple(t *testing.T) {
	td := &model.TrackDescriptor{
		Hash:       "silent",
		DurationMs: 180000,
		BPM:        120,
		Timeline:   []model.TimelineSegment{{Kind: model.SegmentVerse, StartMs: 0, EndMs: 180000, HasVocals: true}},
	}
	list := entries(td)
	if len(list) != 1 {
		t.Fatalf("expected exactly the fallback INTRO_SIMPLE candidate, got %d", len(list))
	}
	if list[0].Strategy != model.StrategyIntroSimple {
		t.Errorf("expected fallback strategy INTRO_SIMPLE, got %s", list[0].Strategy)
	}
}
