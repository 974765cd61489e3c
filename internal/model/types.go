// Package model defines the engine's shared data model: tagged variants
// for segment/strategy/curve/vocal classification plus the track
// descriptor, cue point, mix plan, transition, and session records.
//
// Per the re-architecture guidance, these are sum types rejected at the
// parsing boundary rather than loose strings threaded through the
// pipeline; cues and transitions hold only a track_hash, never a
// back-reference to the descriptor itself.
package model

import (
	"fmt"

	"github.com/cartomix/mixcraft/internal/camelot"
)

// SegmentKind tags a structural timeline segment.
type SegmentKind string

const (
	SegmentIntro        SegmentKind = "intro"
	SegmentVerse        SegmentKind = "verse"
	SegmentChorus       SegmentKind = "chorus"
	SegmentBridge       SegmentKind = "bridge"
	SegmentInstrumental SegmentKind = "instrumental"
	SegmentBreak        SegmentKind = "break"
	SegmentBuildUp      SegmentKind = "build_up"
	SegmentDrop         SegmentKind = "drop"
	SegmentOutro        SegmentKind = "outro"
	SegmentSilence      SegmentKind = "silence"
)

var validSegmentKinds = map[SegmentKind]bool{
	SegmentIntro: true, SegmentVerse: true, SegmentChorus: true, SegmentBridge: true,
	SegmentInstrumental: true, SegmentBreak: true, SegmentBuildUp: true, SegmentDrop: true,
	SegmentOutro: true, SegmentSilence: true,
}

// ParseSegmentKind rejects any value outside the fixed enumeration.
func ParseSegmentKind(s string) (SegmentKind, error) {
	k := SegmentKind(s)
	if !validSegmentKinds[k] {
		return "", fmt.Errorf("model: unknown segment kind %q", s)
	}
	return k, nil
}

// CueType distinguishes an entry point from an exit point.
type CueType string

const (
	CueEntry CueType = "ENTRY"
	CueExit  CueType = "EXIT"
)

// Strategy is the cue-generation rule that produced a cue point.
type Strategy string

const (
	StrategyIntroSimple     Strategy = "INTRO_SIMPLE"
	StrategyDropSwap        Strategy = "DROP_SWAP"
	StrategyImpactEntry     Strategy = "IMPACT_ENTRY"
	StrategyOutroFade       Strategy = "OUTRO_FADE"
	StrategyBreakdownEntry  Strategy = "BREAKDOWN_ENTRY"
	StrategyLoopAnchor      Strategy = "LOOP_ANCHOR"
	StrategyEventSync       Strategy = "EVENT_SYNC"
)

var validStrategies = map[Strategy]bool{
	StrategyIntroSimple: true, StrategyDropSwap: true, StrategyImpactEntry: true,
	StrategyOutroFade: true, StrategyBreakdownEntry: true, StrategyLoopAnchor: true,
	StrategyEventSync: true,
}

func ParseStrategy(s string) (Strategy, error) {
	v := Strategy(s)
	if !validStrategies[v] {
		return "", fmt.Errorf("model: unknown strategy %q", s)
	}
	return v, nil
}

// VocalType classifies the vocal content active at a point in the mix.
type VocalType string

const (
	VocalNone     VocalType = "NONE"
	VocalMelodic  VocalType = "MELODIC_VOCAL"
	VocalRhythmic VocalType = "RHYTHMIC_CHANT"
)

// FreqFocus is the spectral region a cue/transition emphasises.
type FreqFocus string

const (
	FreqLow  FreqFocus = "LOW"
	FreqMid  FreqFocus = "MID"
	FreqHigh FreqFocus = "HIGH"
	FreqFull FreqFocus = "FULL"
)

// Curve is the suggested crossfade shape.
type Curve string

const (
	CurveLinear   Curve = "LINEAR"
	CurveBassSwap Curve = "BASS_SWAP"
	CurveCut      Curve = "CUT"
	CurvePowerMix Curve = "POWER_MIX"
)

// LoopKind is the bar-length of a loop anchor.
type LoopKind string

const (
	LoopOneBar   LoopKind = "1_BAR"
	LoopFourBar  LoopKind = "4_BAR"
	LoopEightBar LoopKind = "8_BAR"
)

// TransitionType classifies the mechanics of a scored transition.
type TransitionType string

const (
	TransitionLongMix   TransitionType = "LONG_MIX"
	TransitionQuickMix  TransitionType = "QUICK_MIX"
	TransitionDoubleDrop TransitionType = "DOUBLE_DROP"
	TransitionLoopMix   TransitionType = "LOOP_MIX"
	TransitionCut       TransitionType = "CUT"
)

// Meter is the track's time signature.
type Meter struct {
	Numerator   int `json:"numerator" validate:"oneof=2 3 4 5 6 7 8 12"`
	Denominator int `json:"denominator" validate:"oneof=4 8"`
}

// Key is the detected tonic/mode pair with estimator confidence.
type Key struct {
	Tonic    camelot.PitchClass `json:"tonic"`
	Mode     camelot.Mode       `json:"mode"`
	Strength float64            `json:"key_strength" validate:"gte=0,lte=1"`
}

// Loop marks a short repeatable phrase, scored 1 (weak) to 10 (strong).
type Loop struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
	Score   int   `json:"score" validate:"gte=1,lte=10"`
}

// TimelineSegment is one element of the gap-free partition of
// [0, duration_ms].
type TimelineSegment struct {
	Kind      SegmentKind `json:"kind"`
	StartMs   int64       `json:"start_ms"`
	EndMs     int64       `json:"end_ms"`
	HasVocals bool        `json:"has_vocals"`
}

func (s TimelineSegment) DurationMs() int64 { return s.EndMs - s.StartMs }

// TrackDescriptor is the immutable, per-track analysis result.
type TrackDescriptor struct {
	Hash       string  `json:"hash"`
	DurationMs int64   `json:"duration_ms" validate:"gt=0"`
	BPM        float64 `json:"bpm" validate:"gte=40,lte=220"`
	BPMRangeLo float64 `json:"bpm_range_lo"`
	BPMRangeHi float64 `json:"bpm_range_hi"`

	Meter Meter `json:"meter"`

	BeatsMs     []int64 `json:"beats_ms"`
	DownbeatsMs []int64 `json:"downbeats_ms"`
	PhrasesMs   []int64 `json:"phrases_ms"`

	Key               Key            `json:"key"`
	Camelot           camelot.Code   `json:"camelot"`
	CamelotCompatible []camelot.Code `json:"camelot_compatible"`

	Energy       float64 `json:"energy" validate:"gte=0,lte=1"`
	Danceability float64 `json:"danceability" validate:"gte=0,lte=1"`
	Mood         string  `json:"mood"`

	LoudnessIntegratedDBFS float64 `json:"loudness_integrated_dbfs"`
	LoudnessRangeLU        float64 `json:"loudness_range_lu"`
	DynamicComplexity      float64 `json:"dynamic_complexity"`
	BeatsLoudness          []float64 `json:"beats_loudness,omitempty"`

	Timeline []TimelineSegment `json:"timeline"`
	Loops    []Loop            `json:"loops,omitempty"`

	TimelineSource string `json:"timeline_source"` // "analyzer" or "labeler"
}

// CuePoint is an entry/exit candidate derived from a descriptor.
type CuePoint struct {
	TrackHash string  `json:"track_hash"`
	PointMs   int64   `json:"point_ms"`
	Type      CueType `json:"type"`
	Strategy  Strategy `json:"strategy"`
	Score     int     `json:"score" validate:"gte=0,lte=100"`

	SafeDurationMs  int64 `json:"safe_duration_ms"`
	HasVocalOverlap bool  `json:"has_vocal_overlap"`

	AlignedToPhrase bool `json:"aligned_to_phrase"`
	AlignedToBar    bool `json:"aligned_to_bar"`
	AlignedTo8Bar   bool `json:"aligned_to_8bar"`

	SectionKind    SegmentKind `json:"section_kind"`
	VocalType      VocalType   `json:"vocal_type"`
	FreqFocus      FreqFocus   `json:"freq_focus"`
	SuggestedCurve Curve       `json:"suggested_curve"`

	LoopLengthMs int64    `json:"loop_length_ms,omitempty"`
	LoopKind     LoopKind `json:"loop_kind,omitempty"`
}

// MixPlanEntry collects the best cues for one track.
type MixPlanEntry struct {
	TrackHash  string     `json:"track_hash"`
	DurationMs int64      `json:"duration_ms"`
	BestEntries []CuePoint `json:"best_entries"`
	BestExits   []CuePoint `json:"best_exits"`
}

// Transition is the scored pairing of one track's exit with the next
// track's entry.
type Transition struct {
	ExitCue        CuePoint       `json:"exit_cue"`
	EntryCue       CuePoint       `json:"entry_cue"`
	Score          float64        `json:"score" validate:"gte=0,lte=100"`
	Type           TransitionType `json:"type"`
	SuggestedCurve Curve          `json:"suggested_curve"`
}

// SessionEntry is one track's position within a sequenced session.
type SessionEntry struct {
	TrackHash              string      `json:"track_hash"`
	TransitionFromPrevious *Transition `json:"transition_from_previous,omitempty"`
}

// SequencedSession is the final ordered playlist.
type SequencedSession struct {
	Tracks             []SessionEntry `json:"tracks"`
	AvgTransitionScore float64        `json:"avg_transition_score"`
}
