package structure

import (
	"sort"

	"github.com/cartomix/mixcraft/internal/labeler"
	"github.com/cartomix/mixcraft/internal/model"
)

// vocalOverlapToleranceMs is the ±1s window §4.5 allows when checking
// whether a verse/chorus segment has corroborating vocal activity.
const vocalOverlapToleranceMs = 1000

// downbeatSnapBeats is how many beats a segment boundary may move to
// align with the nearest downbeat.
const downbeatSnapBeats = 2

// vocalBlockMinMs discards labeler-proposed vocal blocks shorter than
// this as hallucinations.
const vocalBlockMinMs = 1500

// Reconcile merges the analyzer-only timeline with an optional
// labeler response and the detected vocal-activity evidence into the
// final gap-free timeline per §4.5:
//
//   - a labeler's segments replace the analyzer's for the spans they
//     cover; gaps are filled with instrumental, has_vocals=false;
//   - verse/chorus segments with no vocal-activity overlap (±1s) are
//     downgraded to bridge;
//   - vocal blocks shorter than 1.5s, or with no overlapping
//     vocal-activity region, are discarded as hallucinations;
//   - every boundary snaps to the nearest downbeat within 2 beats.
func Reconcile(base []model.TimelineSegment, resp *labeler.Response, vocalRegions []VocalRegion, downbeatsMs []int64, durationMs int64) []model.TimelineSegment {
	timeline := base
	if resp != nil && len(resp.Segments) > 0 {
		timeline = overlayLabelerSegments(base, resp.Segments, durationMs)
	}

	timeline = fillGaps(timeline, durationMs)

	vocalBlocks := filterVocalBlocks(respVocalBlocks(resp), vocalRegions)

	for i := range timeline {
		seg := &timeline[i]
		seg.HasVocals = overlapsAny(seg.StartMs, seg.EndMs, vocalRegions) || overlapsAny(seg.StartMs, seg.EndMs, vocalBlockRanges(vocalBlocks))

		if seg.Kind == model.SegmentVerse || seg.Kind == model.SegmentChorus {
			if !overlapsAnyWithTolerance(seg.StartMs, seg.EndMs, vocalRegions, vocalOverlapToleranceMs) {
				seg.Kind = model.SegmentBridge
			}
		}
	}

	if len(downbeatsMs) > 0 {
		snapBoundaries(timeline, downbeatsMs)
	}

	if len(timeline) > 0 {
		timeline[0].StartMs = 0
		timeline[len(timeline)-1].EndMs = durationMs
	}

	return timeline
}

func respVocalBlocks(resp *labeler.Response) []labeler.VocalBlock {
	if resp == nil {
		return nil
	}
	return resp.VocalBlocks
}

func filterVocalBlocks(blocks []labeler.VocalBlock, regions []VocalRegion) []labeler.VocalBlock {
	var out []labeler.VocalBlock
	for _, b := range blocks {
		if b.EndMs-b.StartMs < vocalBlockMinMs {
			continue
		}
		if !overlapsAny(b.StartMs, b.EndMs, regions) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func vocalBlockRanges(blocks []labeler.VocalBlock) []VocalRegion {
	out := make([]VocalRegion, len(blocks))
	for i, b := range blocks {
		out[i] = VocalRegion{StartMs: b.StartMs, EndMs: b.EndMs}
	}
	return out
}

func overlapsAny(startMs, endMs int64, regions []VocalRegion) bool {
	return overlapsAnyWithTolerance(startMs, endMs, regions, 0)
}

func overlapsAnyWithTolerance(startMs, endMs int64, regions []VocalRegion, toleranceMs int64) bool {
	for _, r := range regions {
		if startMs-toleranceMs < r.EndMs && endMs+toleranceMs > r.StartMs {
			return true
		}
	}
	return false
}

// overlayLabelerSegments replaces the analyzer timeline with the
// labeler's proposed segments, sorted and clamped to [0, durationMs].
func overlayLabelerSegments(base []model.TimelineSegment, proposed []labeler.Segment, durationMs int64) []model.TimelineSegment {
	sorted := append([]labeler.Segment(nil), proposed...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMs < sorted[j].StartMs })

	out := make([]model.TimelineSegment, 0, len(sorted))
	for _, s := range sorted {
		start, end := s.StartMs, s.EndMs
		if start < 0 {
			start = 0
		}
		if end > durationMs {
			end = durationMs
		}
		if end <= start {
			continue
		}
		out = append(out, model.TimelineSegment{Kind: s.Kind, StartMs: start, EndMs: end})
	}
	if len(out) == 0 {
		return base
	}
	return out
}

// fillGaps ensures the timeline covers [0, durationMs] exactly,
// inserting instrumental/has_vocals=false segments into any gap left
// by a partial labeler overlay.
func fillGaps(timeline []model.TimelineSegment, durationMs int64) []model.TimelineSegment {
	if len(timeline) == 0 {
		return []model.TimelineSegment{{Kind: model.SegmentInstrumental, StartMs: 0, EndMs: durationMs}}
	}

	var out []model.TimelineSegment
	cursor := int64(0)
	for _, seg := range timeline {
		if seg.StartMs > cursor {
			out = append(out, model.TimelineSegment{Kind: model.SegmentInstrumental, StartMs: cursor, EndMs: seg.StartMs})
		}
		if seg.EndMs > cursor {
			out = append(out, seg)
			cursor = seg.EndMs
		}
	}
	if cursor < durationMs {
		out = append(out, model.TimelineSegment{Kind: model.SegmentInstrumental, StartMs: cursor, EndMs: durationMs})
	}
	return out
}

// snapBoundaries moves each interior segment boundary to the nearest
// downbeat within downbeatSnapBeats beats of spacing, inferred from
// the median downbeat interval, preserving the overall timeline order.
func snapBoundaries(timeline []model.TimelineSegment, downbeatsMs []int64) {
	if len(downbeatsMs) < 2 {
		return
	}
	medianInterval := medianDownbeatInterval(downbeatsMs)
	toleranceMs := float64(downbeatSnapBeats) * medianInterval

	for i := 1; i < len(timeline); i++ {
		boundary := timeline[i].StartMs
		nearest, dist := nearestDownbeat(downbeatsMs, boundary)
		if float64(dist) <= toleranceMs {
			timeline[i].StartMs = nearest
			timeline[i-1].EndMs = nearest
		}
	}
}

func medianDownbeatInterval(downbeatsMs []int64) float64 {
	if len(downbeatsMs) < 2 {
		return 0
	}
	intervals := make([]int64, 0, len(downbeatsMs)-1)
	for i := 1; i < len(downbeatsMs); i++ {
		intervals = append(intervals, downbeatsMs[i]-downbeatsMs[i-1])
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })
	return float64(intervals[len(intervals)/2])
}

func nearestDownbeat(downbeatsMs []int64, target int64) (int64, int64) {
	best := downbeatsMs[0]
	bestDist := abs64(target - best)
	for _, d := range downbeatsMs[1:] {
		if dist := abs64(target - d); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best, bestDist
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
