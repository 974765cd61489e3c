package labeler

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is a minimal, allocation-free rate limiter: Allow
// refills at refillPerSec and reports false once the bucket is empty,
// which RateLimited turns into ErrRateLimited rather than blocking the
// analysis pipeline on a slow or throttled adapter.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	last       time.Time
}

func NewTokenBucket(capacity, refillPerSec float64) *TokenBucket {
	return &TokenBucket{capacity: capacity, tokens: capacity, refillRate: refillPerSec, last: time.Now()}
}

func (b *TokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.last).Seconds()
	b.last = now
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimited wraps an Adapter so it fails fast with ErrRateLimited
// once its token bucket is exhausted, instead of queueing requests
// behind a slow upstream.
type RateLimited struct {
	Adapter Adapter
	Bucket  *TokenBucket
}

func (r *RateLimited) Label(ctx context.Context, skel Skeleton) (*Response, error) {
	if !r.Bucket.Allow() {
		return nil, ErrRateLimited
	}
	return r.Adapter.Label(ctx, skel)
}
