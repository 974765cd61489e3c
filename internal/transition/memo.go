package transition

import (
	"sync"

	"github.com/cartomix/mixcraft/internal/model"
)

// Memo memoizes the best-scoring transition for an ordered pair of
// track hashes, the only shared mutable state the concurrency model
// allows (§5): guarded by a single RWMutex keyed on (A.hash, B.hash)
// rather than a lock-free map, since contention here is low (one
// lookup per candidate edge, not per frame).
type Memo struct {
	mu sync.RWMutex
	m  map[[2]string]model.Transition
}

func NewMemo() *Memo {
	return &Memo{m: make(map[[2]string]model.Transition)}
}

func (mo *Memo) key(aHash, bHash string) [2]string { return [2]string{aHash, bHash} }

func (mo *Memo) Get(aHash, bHash string) (model.Transition, bool) {
	mo.mu.RLock()
	defer mo.mu.RUnlock()
	t, ok := mo.m[mo.key(aHash, bHash)]
	return t, ok
}

func (mo *Memo) Set(aHash, bHash string, t model.Transition) {
	mo.mu.Lock()
	defer mo.mu.Unlock()
	mo.m[mo.key(aHash, bHash)] = t
}

// GetOrCompute returns the memoized transition for (aHash, bHash),
// computing and storing it via compute if absent.
func (mo *Memo) GetOrCompute(aHash, bHash string, compute func() model.Transition) model.Transition {
	if t, ok := mo.Get(aHash, bHash); ok {
		return t
	}
	t := compute()
	mo.Set(aHash, bHash, t)
	return t
}

// infeasibleScore marks a memoized edge the planner must not traverse
// (compute reported no edge, e.g. missing descriptors). Ordinary scores are always
// clipped to [0,100], so a negative sentinel is unambiguous.
const infeasibleScore = -1

// GetOrComputeOK memoizes a (Transition, feasible) pair, used by the
// sequence planner to distinguish "no edge exists" from "edge scored
// 0". compute returns ok=false when no edge should exist.
func (mo *Memo) GetOrComputeOK(aHash, bHash string, compute func() (model.Transition, bool)) (model.Transition, bool) {
	if t, ok := mo.Get(aHash, bHash); ok {
		if t.Score == infeasibleScore {
			return model.Transition{}, false
		}
		return t, true
	}
	t, ok := compute()
	if !ok {
		mo.Set(aHash, bHash, model.Transition{Score: infeasibleScore})
		return model.Transition{}, false
	}
	mo.Set(aHash, bHash, t)
	return t, true
}
