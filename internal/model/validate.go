package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the go-playground/validator struct-tag checks
// shared by every JSON-facing record in the data model.
func ValidateStruct(v any) error {
	if err := structValidate.Struct(v); err != nil {
		return fmt.Errorf("model: validation failed: %w", err)
	}
	return nil
}

// ValidateDescriptor checks the invariants §3/§8 state cannot be expressed
// as simple struct tags: monotonic beats, downbeat/beat subsequence,
// gap-free timeline coverage.
func ValidateDescriptor(d *TrackDescriptor) error {
	if err := ValidateStruct(d); err != nil {
		return err
	}
	if len(d.BeatsMs) < 2 {
		return fmt.Errorf("model: descriptor %s has fewer than 2 beats", d.Hash)
	}
	for i := 1; i < len(d.BeatsMs); i++ {
		if d.BeatsMs[i] <= d.BeatsMs[i-1] {
			return fmt.Errorf("model: descriptor %s beats not strictly increasing at %d", d.Hash, i)
		}
	}
	for _, b := range d.BeatsMs {
		if b < 0 || b > d.DurationMs {
			return fmt.Errorf("model: descriptor %s beat %d out of range", d.Hash, b)
		}
	}
	if !isSubsequence(d.DownbeatsMs, d.BeatsMs) {
		return fmt.Errorf("model: descriptor %s downbeats not a subsequence of beats", d.Hash)
	}
	if err := validateTimeline(d.Timeline, d.DurationMs); err != nil {
		return fmt.Errorf("model: descriptor %s: %w", d.Hash, err)
	}
	return nil
}

func isSubsequence(sub, full []int64) bool {
	i := 0
	for _, v := range full {
		if i < len(sub) && sub[i] == v {
			i++
		}
	}
	return i == len(sub)
}

func validateTimeline(segs []TimelineSegment, durationMs int64) error {
	if len(segs) == 0 {
		return fmt.Errorf("empty timeline")
	}
	if segs[0].StartMs != 0 {
		return fmt.Errorf("timeline does not start at 0")
	}
	for i, s := range segs {
		if s.EndMs <= s.StartMs {
			return fmt.Errorf("segment %d has non-positive duration", i)
		}
		if i > 0 && s.StartMs != segs[i-1].EndMs {
			return fmt.Errorf("timeline has gap/overlap between segment %d and %d", i-1, i)
		}
	}
	if segs[len(segs)-1].EndMs != durationMs {
		return fmt.Errorf("timeline does not end at duration_ms")
	}
	return nil
}

// ValidateCue checks a cue point against the cue-list invariants: point in
// range, entries in the first 40%% of the track, exits in the last 45%%.
func ValidateCue(c CuePoint, durationMs int64) error {
	if err := ValidateStruct(&c); err != nil {
		return err
	}
	if c.PointMs < 0 || c.PointMs > durationMs {
		return fmt.Errorf("model: cue point_ms %d out of [0, %d]", c.PointMs, durationMs)
	}
	if c.Type == CueEntry && float64(c.PointMs) > 0.40*float64(durationMs) {
		return fmt.Errorf("model: entry cue at %dms exceeds first 40%% of %dms", c.PointMs, durationMs)
	}
	if c.Type == CueExit && float64(c.PointMs) < 0.55*float64(durationMs) {
		return fmt.Errorf("model: exit cue at %dms precedes last 45%% of %dms", c.PointMs, durationMs)
	}
	if c.AlignedTo8Bar && !c.AlignedToBar {
		return fmt.Errorf("model: cue aligned_to_8bar without aligned_to_bar")
	}
	return nil
}
