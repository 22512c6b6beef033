package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSweepRemovesOnlyExpiredEntries(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	ctx := context.Background()
	p := Policy{Limit: 5, Window: 60 * time.Second}

	if _, err := store.Check(ctx, "LOGIN|user:old", p, start); err != nil {
		t.Fatalf("Check old: %v", err)
	}
	if _, err := store.Check(ctx, "LOGIN|user:new", p, start.Add(50*time.Second)); err != nil {
		t.Fatalf("Check new: %v", err)
	}

	// old expired at +60s; new expires at +110s.
	if err := store.Sweep(ctx, start.Add(70*time.Second)); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("entries after sweep = %d, want 1", got)
	}

	// The surviving entry keeps its count.
	res, err := store.Check(ctx, "LOGIN|user:new", p, start.Add(80*time.Second))
	if err != nil {
		t.Fatalf("Check surviving: %v", err)
	}
	if res.Remaining != 3 {
		t.Fatalf("remaining = %d, want 3 (count carried across sweep)", res.Remaining)
	}
}

func TestSweepKeepsLiveEntryRegardlessOfCount(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	ctx := context.Background()
	p := Policy{Limit: 5, Window: 10 * time.Minute}

	store.Check(ctx, "LOGIN|user:1", p, start)
	if err := store.Sweep(ctx, start.Add(time.Minute)); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("live entry was swept")
	}
}

func TestMemoryStoreConcurrentChecksNeverExceedLimit(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	ctx := context.Background()
	p := Policy{Limit: 50, Window: time.Minute}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.Check(ctx, "LOGIN|user:1", p, start)
			if err != nil {
				t.Errorf("Check: %v", err)
				return
			}
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Fatalf("allowed = %d, want exactly the limit", allowed)
	}
}
