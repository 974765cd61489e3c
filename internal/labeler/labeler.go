// Package labeler defines the advisory LLM-backed timeline labeler
// described in §4.9: a stateless adapter the engine may consult for
// verse/chorus/bridge semantics it cannot derive from signal analysis
// alone. The engine must run correctly with zero adapters configured —
// every caller treats a labeler response as a hint to be reconciled
// against signal evidence, never as ground truth.
package labeler

import (
	"context"
	"errors"

	"github.com/cartomix/mixcraft/internal/model"
)

// Skeleton is the analyzer-only context an adapter needs to propose a
// semantic timeline: enough to reason about song structure, nothing
// that requires the adapter to re-derive signal features itself.
type Skeleton struct {
	TrackHash  string
	DurationMs int64
	BPM        float64
	Timeline   []model.TimelineSegment
}

// Segment is a candidate semantic label for a span of the track.
type Segment struct {
	Kind    model.SegmentKind
	StartMs int64
	EndMs   int64
}

// VocalBlock is a candidate vocal-active span.
type VocalBlock struct {
	StartMs int64
	EndMs   int64
}

// LoopCandidate is a candidate loop anchor with an adapter-assigned
// strength, reconciled the same way as Loop.Score.
type LoopCandidate struct {
	StartMs int64
	EndMs   int64
	Score   int
}

// Event is a named instant of interest (e.g. a vocal drop-out, an
// impact hit) the adapter noticed but that doesn't map to a segment.
type Event struct {
	TimeMs int64
	Kind   string
}

// Response is everything an adapter may propose for one track.
type Response struct {
	Segments    []Segment
	VocalBlocks []VocalBlock
	Loops       []LoopCandidate
	Events      []Event
}

// Adapter labels a track skeleton. Implementations must be safe to
// call concurrently and must fail fast (a retryable error, never a
// panic or indefinite block) when rate-limited.
type Adapter interface {
	Label(ctx context.Context, skel Skeleton) (*Response, error)
}

// ErrRateLimited is returned by a rate-limited Adapter once its budget
// is exhausted; callers should treat it as transient and fall back to
// the analyzer-only timeline rather than retrying inline.
var ErrRateLimited = errors.New("labeler: rate limit exceeded")

// NullAdapter is the zero-instance, core-only default: it returns an
// empty response for every track, which Reconcile treats identically
// to "no labeler configured".
type NullAdapter struct{}

func (NullAdapter) Label(ctx context.Context, skel Skeleton) (*Response, error) {
	return &Response{}, nil
}
