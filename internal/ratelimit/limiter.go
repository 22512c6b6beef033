package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"upfolio-backend/internal/shared/telemetry"
)

// DefaultSweepInterval is how often expired entries are removed when the
// caller does not override it.
const DefaultSweepInterval = 5 * time.Minute

// Policy is a named fixed-window rule: at most Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of a single Check call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store holds fixed-window counters. Implementations must treat each
// read-modify-write of one key as a critical section.
type Store interface {
	// Check applies the fixed-window transition for key and returns the outcome.
	Check(ctx context.Context, key string, p Policy, now time.Time) (Result, error)
	// Reset removes any entry for key.
	Reset(ctx context.Context, key string) error
	// Sweep removes entries whose window elapsed before now. Stores with
	// native expiry may make this a no-op.
	Sweep(ctx context.Context, now time.Time) error
}

// Limiter evaluates named fixed-window policies against a Store.
//
// Fixed window is deliberate: it accepts the known burst at window edges in
// exchange for O(1) state per identifier. Callers must not swap in sliding
// windows without revisiting every configured limit.
type Limiter struct {
	mu       sync.RWMutex
	policies map[string]Policy
	store    Store
	now      func() time.Time
}

// New constructs a Limiter. A nil now defaults to time.Now.
func New(store Store, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		policies: make(map[string]Policy),
		store:    store,
		now:      now,
	}
}

// Configure registers a named policy. Limit and window must be positive.
func (l *Limiter) Configure(name string, limit int, window time.Duration) error {
	if name == "" {
		return fmt.Errorf("ratelimit: policy name is required")
	}
	if limit <= 0 {
		return fmt.Errorf("ratelimit: policy %s: limit must be positive", name)
	}
	if window <= 0 {
		return fmt.Errorf("ratelimit: policy %s: window must be positive", name)
	}
	l.mu.Lock()
	l.policies[name] = Policy{Limit: limit, Window: window}
	l.mu.Unlock()
	return nil
}

// Policy returns the named policy, if registered.
func (l *Limiter) Policy(name string) (Policy, bool) {
	l.mu.RLock()
	p, ok := l.policies[name]
	l.mu.RUnlock()
	return p, ok
}

// Check counts one request for identifier under the named policy. An
// unregistered policy allows the request; misconfiguration must not take
// the endpoint down.
func (l *Limiter) Check(ctx context.Context, name, identifier string) (Result, error) {
	if identifier == "" {
		return Result{}, fmt.Errorf("ratelimit: identifier is required")
	}
	p, ok := l.Policy(name)
	if !ok {
		return Result{Allowed: true, Remaining: 0}, nil
	}
	return l.store.Check(ctx, key(name, identifier), p, l.now())
}

// Reset deletes the entry for identifier under the named policy.
func (l *Limiter) Reset(ctx context.Context, name, identifier string) error {
	return l.store.Reset(ctx, key(name, identifier))
}

// StartSweep runs the store sweep on the given interval until ctx is done.
// Interval <= 0 falls back to DefaultSweepInterval.
func (l *Limiter) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.store.Sweep(ctx, l.now()); err != nil {
					telemetry.Error("ratelimit.sweep", map[string]any{"error": err.Error()})
				}
			}
		}
	}()
}

func key(name, identifier string) string {
	return name + "|" + identifier
}
