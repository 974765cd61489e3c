package structure

import (
	"math"
	"testing"

	"github.com/cartomix/mixcraft/internal/decode"
	"github.com/cartomix/mixcraft/internal/labeler"
	"github.com/cartomix/mixcraft/internal/model"
)

func silence(sampleRate int, durationSec float64) []float64 {
	return make([]float64, int(durationSec*float64(sampleRate)))
}

func loudTone(sampleRate int, freq, amplitude, durationSec float64) []float64 {
	n := int(durationSec * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestSegmentWholeTrackInstrumentalBecomesIntro(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: loudTone(sampleRate, 220, 0.05, 10)}

	segs := Segment(pcm)
	if len(segs) != 1 {
		t.Fatalf("expected a single segment, got %d", len(segs))
	}
	if segs[0].Kind != model.SegmentIntro {
		t.Errorf("expected sole low-energy run to be classified intro, got %s", segs[0].Kind)
	}
	if segs[0].StartMs != 0 || segs[0].EndMs != pcm.DurationMs() {
		t.Errorf("segment should span the whole track, got [%d,%d)", segs[0].StartMs, segs[0].EndMs)
	}
}

func TestSegmentIntenseMiddleStaysDrop(t *testing.T) {
	sampleRate := 44100
	var samples []float64
	samples = append(samples, silence(sampleRate, 4)...)
	samples = append(samples, loudTone(sampleRate, 440, 0.9, 4)...)
	samples = append(samples, silence(sampleRate, 4)...)
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: samples}

	segs := Segment(pcm)
	if len(segs) < 3 {
		t.Fatalf("expected at least 3 runs (silence/intense/silence), got %d", len(segs))
	}
	first, last := segs[0], segs[len(segs)-1]
	if first.Kind != model.SegmentIntro {
		t.Errorf("expected leading run to become intro, got %s", first.Kind)
	}
	if last.Kind != model.SegmentOutro {
		t.Errorf("expected trailing run to become outro, got %s", last.Kind)
	}
	foundDrop := false
	for _, s := range segs {
		if s.Kind == model.SegmentDrop {
			foundDrop = true
		}
	}
	if !foundDrop {
		t.Error("expected an intense middle run to be classified drop")
	}
}

func TestSegmentCoversFullDuration(t *testing.T) {
	sampleRate := 44100
	pcm := &decode.PCM{SampleRate: sampleRate, Samples: loudTone(sampleRate, 110, 0.9, 12)}

	segs := Segment(pcm)
	if segs[0].StartMs != 0 {
		t.Errorf("timeline must start at 0, got %d", segs[0].StartMs)
	}
	if segs[len(segs)-1].EndMs != pcm.DurationMs() {
		t.Errorf("timeline must end at duration_ms, got %d vs %d", segs[len(segs)-1].EndMs, pcm.DurationMs())
	}
	for i := 1; i < len(segs); i++ {
		if segs[i-1].EndMs != segs[i].StartMs {
			t.Errorf("gap between segment %d and %d: %d != %d", i-1, i, segs[i-1].EndMs, segs[i].StartMs)
		}
	}
}

func TestDetectVocalActivityFindsMidrangeTone(t *testing.T) {
	sampleRate := 44100
	var samples []float64
	samples = append(samples, silence(sampleRate, 2)...)
	samples = append(samples, loudTone(sampleRate, 800, 0.9, 3)...)
	samples = append(samples, silence(sampleRate, 2)...)

	regions := DetectVocalActivity(sampleRate, samples)
	if len(regions) == 0 {
		t.Fatal("expected at least one vocal-activity region")
	}
	mid := int64(3500)
	found := false
	for _, r := range regions {
		if mid >= r.StartMs && mid <= r.EndMs {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a region to cover the midrange tone at %dms, got %+v", mid, regions)
	}
}

func TestReconcileFillsGapsAndDowngradesUnsupportedVocalSections(t *testing.T) {
	durationMs := int64(60000)
	base := []model.TimelineSegment{
		{Kind: model.SegmentIntro, StartMs: 0, EndMs: 10000},
		{Kind: model.SegmentInstrumental, StartMs: 10000, EndMs: durationMs},
	}
	resp := &labeler.Response{
		Segments: []labeler.Segment{
			{Kind: model.SegmentVerse, StartMs: 10000, EndMs: 20000},
			{Kind: model.SegmentChorus, StartMs: 30000, EndMs: 40000},
		},
	}
	// Vocal evidence only corroborates the chorus span.
	vocalRegions := []VocalRegion{{StartMs: 30500, EndMs: 39500}}

	timeline := Reconcile(base, resp, vocalRegions, nil, durationMs)

	if timeline[0].StartMs != 0 {
		t.Errorf("timeline must start at 0, got %d", timeline[0].StartMs)
	}
	if timeline[len(timeline)-1].EndMs != durationMs {
		t.Errorf("timeline must end at duration_ms, got %d", timeline[len(timeline)-1].EndMs)
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i-1].EndMs != timeline[i].StartMs {
			t.Errorf("gap between %d and %d: %d != %d", i-1, i, timeline[i-1].EndMs, timeline[i].StartMs)
		}
	}

	var verseKind, chorusKind model.SegmentKind
	for _, s := range timeline {
		if s.StartMs == 10000 {
			verseKind = s.Kind
		}
		if s.StartMs == 30000 {
			chorusKind = s.Kind
		}
	}
	if verseKind != model.SegmentBridge {
		t.Errorf("verse with no vocal overlap should downgrade to bridge, got %s", verseKind)
	}
	if chorusKind != model.SegmentChorus {
		t.Errorf("chorus with vocal overlap should remain chorus, got %s", chorusKind)
	}
}

func TestReconcileDiscardsShortVocalBlockHallucination(t *testing.T) {
	durationMs := int64(30000)
	base := []model.TimelineSegment{{Kind: model.SegmentInstrumental, StartMs: 0, EndMs: durationMs}}
	resp := &labeler.Response{
		VocalBlocks: []labeler.VocalBlock{
			{StartMs: 5000, EndMs: 5800}, // 800ms, below the 1.5s floor
		},
	}
	vocalRegions := []VocalRegion{{StartMs: 5000, EndMs: 5800}}

	timeline := Reconcile(base, resp, vocalRegions, nil, durationMs)
	for _, s := range timeline {
		if s.StartMs <= 5000 && s.EndMs >= 5800 && s.HasVocals {
			// has_vocals may still be true from the raw vocalRegions
			// evidence itself; what must NOT happen is the short block
			// surviving as its own discrete segment.
		}
	}
	if len(timeline) != 1 {
		t.Errorf("a sub-1.5s vocal block must not fragment the timeline, got %d segments", len(timeline))
	}
}
