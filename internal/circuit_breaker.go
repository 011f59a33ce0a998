package internal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lychee-technology/listmeta"
	"go.uber.org/zap"
)

// CircuitBreaker is a lightweight in-memory circuit breaker.
type CircuitBreaker struct {
	mu           sync.Mutex
	failures     []time.Time
	threshold    int
	window       time.Duration
	openUntil    time.Time
	openDuration time.Duration
	now          func() time.Time
}

// NewCircuitBreaker creates a breaker that opens for openDuration once
// threshold failures fall inside window.
func NewCircuitBreaker(threshold int, window, openDuration time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:    threshold,
		window:       window,
		openDuration: openDuration,
		failures:     make([]time.Time, 0, threshold),
		now:          time.Now,
	}
}

// RecordFailure records a failure occurrence and opens the breaker if threshold exceeded.
func (cb *CircuitBreaker) RecordFailure() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	cutoff := now.Add(-cb.window)
	i := 0
	for ; i < len(cb.failures); i++ {
		if cb.failures[i].After(cutoff) {
			break
		}
	}
	if i > 0 {
		cb.failures = append([]time.Time{}, cb.failures[i:]...)
	}
	cb.failures = append(cb.failures, now)

	if len(cb.failures) >= cb.threshold {
		cb.openUntil = now.Add(cb.openDuration)
	}
}

// RecordSuccess resets failure history when operations succeed.
func (cb *CircuitBreaker) RecordSuccess() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = cb.failures[:0]
	cb.openUntil = time.Time{}
}

// IsOpen returns true if the breaker is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	if cb == nil {
		return false
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.now().Before(cb.openUntil)
}

// ErrLookupSuspended is returned by a guarded store while its breaker is open.
var ErrLookupSuspended = errors.New("thumbnail lookups suspended after repeated failures")

// GuardedThumbnailStore skips thumbnail queries while the database keeps
// failing, so pages render without images instead of waiting on every request.
type GuardedThumbnailStore struct {
	store   listmeta.ThumbnailStore
	breaker *CircuitBreaker
}

var _ listmeta.ThumbnailStore = (*GuardedThumbnailStore)(nil)

// GuardThumbnailStore wraps store with a breaker built from cfg. A zero
// threshold returns store unchanged.
func GuardThumbnailStore(store listmeta.ThumbnailStore, cfg listmeta.BreakerConfig) listmeta.ThumbnailStore {
	if store == nil || cfg.Threshold <= 0 {
		return store
	}
	return &GuardedThumbnailStore{
		store:   store,
		breaker: NewCircuitBreaker(cfg.Threshold, cfg.Window, cfg.OpenDuration),
	}
}

// ThumbnailPath implements listmeta.ThumbnailStore.
func (g *GuardedThumbnailStore) ThumbnailPath(ctx context.Context, listID int64) (string, bool, error) {
	if g.breaker.IsOpen() {
		return "", false, ErrLookupSuspended
	}
	path, ok, err := g.store.ThumbnailPath(ctx, listID)
	if err != nil {
		// a caller that gave up says nothing about the database
		if ctx.Err() != nil {
			return "", false, err
		}
		g.breaker.RecordFailure()
		if g.breaker.IsOpen() {
			zap.S().Warnw("thumbnail lookup breaker opened", "list_id", listID, "err", err)
		}
		return "", false, err
	}
	g.breaker.RecordSuccess()
	return path, ok, nil
}
