// Package sequence implements §4.8's A*-based session planner, which
// replaces the teacher's original greedy nearest-neighbor sequencer
// with an admissible-heuristic best-first search over the same
// transition scorer.
package sequence

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cartomix/mixcraft/internal/errorsx"
	"github.com/cartomix/mixcraft/internal/model"
	"github.com/cartomix/mixcraft/internal/transition"
)

const (
	expansionCap      = 10000
	heuristicPerTrack = 5.0
)

var errNoFeasiblePath = errorsx.New(errorsx.PlanInfeasible, "no feasible session path exists among the candidate tracks")

// Library is everything the planner needs about the candidate tracks:
// their descriptors and their precomputed cue-point plans.
type Library struct {
	Descriptors map[string]*model.TrackDescriptor
	Plans       map[string]*model.MixPlanEntry
	Memo        *transition.Memo
}

type node struct {
	current string
	used    mapset.Set[string]
	path    []string
	edges   []model.Transition
	g       float64
}

func (n *node) f(target int) float64 {
	return n.g + heuristicPerTrack*float64(target-n.used.Cardinality())
}

// Plan searches for the lowest-cost ordering of target tracks starting
// from startHash, using best-first expansion capped at 10,000 pops.
// When the cap is reached or the open set empties before a complete
// path is found, the best complete path seen so far is returned; if
// none ever completed, the best partial path is extended greedily.
func Plan(lib *Library, startHash string, allHashes []string, target int) (*model.SequencedSession, error) {
	if target <= 0 || target > len(allHashes) {
		target = len(allHashes)
	}

	start := &node{
		current: startHash,
		used:    mapset.NewSet(startHash),
		path:    []string{startHash},
	}

	var open []*node
	open = append(open, start)

	var bestComplete *node
	bestPartial := start
	pops := 0

	for len(open) > 0 && pops < expansionCap {
		idx := pickBest(open, target)
		cur := open[idx]
		open = append(open[:idx], open[idx+1:]...)
		pops++

		if len(cur.path) > len(bestPartial.path) || (len(cur.path) == len(bestPartial.path) && cur.g < bestPartial.g) {
			bestPartial = cur
		}

		if cur.used.Cardinality() == target {
			if bestComplete == nil || cur.g < bestComplete.g {
				bestComplete = cur
			}
			continue
		}

		for _, candidate := range allHashes {
			if cur.used.Contains(candidate) {
				continue
			}
			t, ok := bestTransition(lib, cur.current, candidate)
			if !ok {
				continue
			}
			cost := 100 - t.Score
			next := &node{
				current: candidate,
				used:    cur.used.Clone(),
				path:    append(append([]string(nil), cur.path...), candidate),
				edges:   append(append([]model.Transition(nil), cur.edges...), t),
				g:       cur.g + cost,
			}
			next.used.Add(candidate)
			open = append(open, next)
		}
	}

	best := bestComplete
	if best == nil {
		best = extendGreedily(lib, bestPartial, allHashes, target)
	}
	if best == nil || best.used.Cardinality() < target {
		return nil, errNoFeasiblePath
	}

	return toSession(best, target), nil
}

// pickBest returns the index of the open node with lowest f = g + h,
// breaking ties toward the deeper (more complete) path.
func pickBest(open []*node, target int) int {
	best := 0
	bestF := open[0].f(target)
	bestDepth := len(open[0].path)
	for i := 1; i < len(open); i++ {
		f := open[i].f(target)
		depth := len(open[i].path)
		if f < bestF || (f == bestF && depth > bestDepth) {
			best, bestF, bestDepth = i, f, depth
		}
	}
	return best
}

// extendGreedily completes the best partial path found by repeatedly
// picking the lowest-cost unvisited successor, used when the search
// exhausts its cap or open set before any path reaches target length.
func extendGreedily(lib *Library, start *node, allHashes []string, target int) *node {
	cur := start
	for cur.used.Cardinality() < target {
		var bestNext string
		var bestT model.Transition
		found := false
		for _, candidate := range allHashes {
			if cur.used.Contains(candidate) {
				continue
			}
			t, ok := bestTransition(lib, cur.current, candidate)
			if !ok {
				continue
			}
			if !found || t.Score > bestT.Score {
				bestNext, bestT, found = candidate, t, true
			}
		}
		if !found {
			break
		}
		cur = &node{
			current: bestNext,
			used:    cur.used.Clone(),
			path:    append(append([]string(nil), cur.path...), bestNext),
			edges:   append(append([]model.Transition(nil), cur.edges...), bestT),
			g:       cur.g + (100 - bestT.Score),
		}
		cur.used.Add(bestNext)
	}
	return cur
}

// bestTransition always produces a successor for any pair of tracks
// with known descriptors and plans: §4.8 requires that a scorer veto
// (score 0, e.g. a too-large BPM gap) fall back to an emergency CUT
// rather than eliminate the edge, since the scorer's output is clipped
// to [0,100] and a negative score that could justify dropping the edge
// outright never actually occurs. The only case bestTransition reports
// "no edge" for is missing track data, not a low or vetoed score.
func bestTransition(lib *Library, aHash, bHash string) (model.Transition, bool) {
	return lib.Memo.GetOrComputeOK(aHash, bHash, func() (model.Transition, bool) {
		trackA, trackB := lib.Descriptors[aHash], lib.Descriptors[bHash]
		planA, planB := lib.Plans[aHash], lib.Plans[bHash]
		if trackA == nil || trackB == nil || planA == nil || planB == nil {
			return model.Transition{}, false
		}
		return transition.BestPairing(trackA, planA.BestExits, trackB, planB.BestEntries), true
	})
}

func toSession(n *node, target int) *model.SequencedSession {
	entries := make([]model.SessionEntry, len(n.path))
	entries[0] = model.SessionEntry{TrackHash: n.path[0]}
	for i := 1; i < len(n.path); i++ {
		edge := n.edges[i-1]
		entries[i] = model.SessionEntry{TrackHash: n.path[i], TransitionFromPrevious: &edge}
	}

	avg := 0.0
	if target > 1 {
		avg = 100 - n.g/float64(target-1)
	}

	return &model.SequencedSession{Tracks: entries, AvgTransitionScore: avg}
}
