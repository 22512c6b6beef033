package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps fixed-window counters in an in-process map. Correct for a
// single instance only; multi-instance deployments need the Redis store so
// all instances share one counter per identifier.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*windowEntry)}
}

// Check applies the fixed-window transition for key.
func (s *MemoryStore) Check(ctx context.Context, key string, p Policy, now time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &windowEntry{count: 1, resetAt: now.Add(p.Window)}
		s.entries[key] = e
		return Result{Allowed: true, Remaining: p.Limit - 1, ResetAt: e.resetAt}, nil
	}
	if e.count < p.Limit {
		e.count++
		return Result{Allowed: true, Remaining: p.Limit - e.count, ResetAt: e.resetAt}, nil
	}
	// Saturated: rejected requests do not extend or grow the window.
	return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
}

// Reset removes the entry for key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Sweep drops entries whose window elapsed before now. Entries still inside
// their window survive regardless of count.
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
	return nil
}

// Len reports the number of live entries. Used by sweep tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
