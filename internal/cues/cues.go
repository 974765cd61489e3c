package cues

import "github.com/cartomix/mixcraft/internal/model"

// Plan generates the track's best-entries/best-exits lists per §4.6.
func Plan(td *model.TrackDescriptor) *model.MixPlanEntry {
	return &model.MixPlanEntry{
		TrackHash:   td.Hash,
		DurationMs:  td.DurationMs,
		BestEntries: entries(td),
		BestExits:   exits(td),
	}
}
