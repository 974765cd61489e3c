// Package pipeline wires decode, rhythm, tonal, loudness, structure,
// and cue generation into the single ordered pass the engine runs
// over every submitted track, reporting progress and persisting the
// resulting descriptor along the way.
package pipeline

import (
	"context"
	"os"

	"github.com/cartomix/mixcraft/internal/config"
	"github.com/cartomix/mixcraft/internal/cues"
	"github.com/cartomix/mixcraft/internal/decode"
	"github.com/cartomix/mixcraft/internal/errorsx"
	"github.com/cartomix/mixcraft/internal/labeler"
	"github.com/cartomix/mixcraft/internal/loudness"
	"github.com/cartomix/mixcraft/internal/model"
	"github.com/cartomix/mixcraft/internal/progress"
	"github.com/cartomix/mixcraft/internal/rhythm"
	"github.com/cartomix/mixcraft/internal/storage"
	"github.com/cartomix/mixcraft/internal/structure"
	"github.com/cartomix/mixcraft/internal/tonal"
)

// Pipeline runs the analysis stages against decoded audio and
// persists the resulting descriptor.
type Pipeline struct {
	cfg     *config.Config
	db      *storage.DB
	labeler labeler.Adapter
}

// New builds a Pipeline. A nil adapter defaults to labeler.NullAdapter,
// which contributes no segment overlay and leaves reconciliation to
// run on the analyzer's own timeline alone.
func New(cfg *config.Config, db *storage.DB, adapter labeler.Adapter) *Pipeline {
	if adapter == nil {
		adapter = labeler.NullAdapter{}
	}
	return &Pipeline{cfg: cfg, db: db, labeler: adapter}
}

// AnalyzeFile decodes path, runs every enabled analysis stage, plans
// cue points, and persists the resulting descriptor keyed by hash.
// reporter may be nil, in which case progress is simply not reported.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path, hash string, reporter *progress.Reporter) (*model.TrackDescriptor, error) {
	report := func(phase progress.Phase, msg string) {
		if reporter != nil {
			reporter.Report(phase, msg)
		}
	}

	report(progress.PhaseDecoding, "decoding "+path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.DecodeFailed, err).WithTrack(hash)
	}
	defer f.Close()

	pcm, err := decode.Decode(f, p.cfg.SampleRate)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.DecodeFailed, err).WithTrack(hash)
	}
	if p.cfg.Normalize.Enabled {
		decode.Normalize(pcm, p.cfg.Normalize.TargetLUFS)
	}

	td := &model.TrackDescriptor{Hash: hash, DurationMs: pcm.DurationMs()}

	if !p.cfg.Disable.BPM {
		report(progress.PhaseRhythm, "tracking beats")
		r, err := rhythm.Analyze(pcm)
		if err != nil {
			return nil, errorsx.Wrap(errorsx.AnalysisFailed, err).WithTrack(hash).WithPhase(string(progress.PhaseRhythm))
		}
		td.BPM = r.BPM
		td.Meter = r.Meter
		td.BeatsMs = r.BeatsMs
		td.DownbeatsMs = r.DownbeatsMs
		td.PhrasesMs = r.PhrasesMs
	}

	if !p.cfg.Disable.Tonal {
		report(progress.PhaseTonal, "estimating key")
		t, err := tonal.Analyze(pcm)
		if err != nil {
			return nil, errorsx.Wrap(errorsx.AnalysisFailed, err).WithTrack(hash).WithPhase(string(progress.PhaseTonal))
		}
		td.Key = t.Key
		td.Camelot = t.Camelot
		td.CamelotCompatible = t.CamelotCompatible
	}

	report(progress.PhaseLoudness, "measuring loudness")
	l := loudness.Analyze(pcm, td.BPM)
	td.Energy = l.Energy
	td.Danceability = l.Danceability
	td.Mood = l.Mood
	td.LoudnessIntegratedDBFS = l.IntegratedLUFS
	td.LoudnessRangeLU = l.LoudnessRangeLU
	td.DynamicComplexity = l.DynamicComplexity

	report(progress.PhaseStructure, "segmenting structure")
	base := structure.Segment(pcm)
	vocalRegions := structure.DetectVocalActivity(pcm.SampleRate, pcm.Samples)

	var labelerResp *labeler.Response
	skel := labeler.Skeleton{TrackHash: hash, DurationMs: td.DurationMs, BPM: td.BPM, Timeline: base}
	if resp, err := p.labeler.Label(ctx, skel); err == nil {
		labelerResp = resp
	}
	td.TimelineSource = "analyzer"
	if labelerResp != nil && len(labelerResp.Segments) > 0 {
		td.TimelineSource = "labeler"
	}
	td.Timeline = structure.Reconcile(base, labelerResp, vocalRegions, td.DownbeatsMs, td.DurationMs)

	if !p.cfg.Disable.Cues {
		report(progress.PhaseCues, "planning cue points")
		// cues.Plan is recomputed on demand from the persisted descriptor
		// rather than stored alongside it, so this pass only validates
		// that a plan is derivable before the descriptor is cached.
		if plan := cues.Plan(td); plan == nil {
			return nil, errorsx.New(errorsx.AnalysisFailed, "cue planning produced no plan").WithTrack(hash)
		}
	}

	if p.db != nil {
		if err := p.db.PutDescriptor(td); err != nil {
			return nil, errorsx.Wrap(errorsx.AnalysisFailed, err).WithTrack(hash)
		}
	}

	return td, nil
}
