package ratelimit

import (
	"context"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, start time.Time) (*Limiter, *MemoryStore, *time.Time) {
	t.Helper()
	now := start
	store := NewMemoryStore()
	l := New(store, func() time.Time { return now })
	return l, store, &now
}

func TestCheckCountsDownAndSaturates(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l, _, _ := newTestLimiter(t, start)
	if err := l.Configure("LOGIN", 5, 60*time.Second); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	ctx := context.Background()
	wantRemaining := []int{4, 3, 2, 1, 0}
	for i, want := range wantRemaining {
		res, err := l.Check(ctx, "LOGIN", "user:1")
		if err != nil {
			t.Fatalf("Check %d: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("Check %d: expected allowed", i+1)
		}
		if res.Remaining != want {
			t.Fatalf("Check %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
		if got := res.ResetAt; !got.Equal(start.Add(60 * time.Second)) {
			t.Fatalf("Check %d: resetAt = %v", i+1, got)
		}
	}

	res, err := l.Check(ctx, "LOGIN", "user:1")
	if err != nil {
		t.Fatalf("Check 6: %v", err)
	}
	if res.Allowed {
		t.Fatalf("Check 6: expected denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("Check 6: remaining = %d, want 0", res.Remaining)
	}
	if !res.ResetAt.Equal(start.Add(60 * time.Second)) {
		t.Fatalf("Check 6: resetAt = %v", res.ResetAt)
	}
}

func TestCheckFreshWindowAfterReset(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l, _, now := newTestLimiter(t, start)
	if err := l.Configure("LOGIN", 2, 60*time.Second); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if res, _ := l.Check(ctx, "LOGIN", "user:1"); !res.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
	}
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); res.Allowed {
		t.Fatalf("expected denied at limit")
	}

	// Window boundary is exclusive for the live entry: at resetAt the
	// window has elapsed.
	*now = start.Add(60 * time.Second)
	res, err := l.Check(ctx, "LOGIN", "user:1")
	if err != nil {
		t.Fatalf("Check after window: %v", err)
	}
	if !res.Allowed || res.Remaining != 1 {
		t.Fatalf("expected fresh window allowed with remaining 1, got %+v", res)
	}
	if !res.ResetAt.Equal(start.Add(120 * time.Second)) {
		t.Fatalf("resetAt = %v", res.ResetAt)
	}
}

func TestDeniedRequestsDoNotExtendWindow(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l, _, now := newTestLimiter(t, start)
	if err := l.Configure("LOGIN", 1, 60*time.Second); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	ctx := context.Background()
	l.Check(ctx, "LOGIN", "user:1")
	for i := 0; i < 10; i++ {
		*now = now.Add(time.Second)
		if res, _ := l.Check(ctx, "LOGIN", "user:1"); res.Allowed {
			t.Fatalf("burst request %d: expected denied", i+1)
		}
	}
	*now = start.Add(61 * time.Second)
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); !res.Allowed {
		t.Fatalf("expected allowed once the original window elapsed")
	}
}

func TestIdentifiersAreIndependent(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l, _, _ := newTestLimiter(t, start)
	l.Configure("LOGIN", 1, 60*time.Second)

	ctx := context.Background()
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); !res.Allowed {
		t.Fatalf("user:1 first request should pass")
	}
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); res.Allowed {
		t.Fatalf("user:1 second request should be denied")
	}
	if res, _ := l.Check(ctx, "LOGIN", "ip:10.0.0.1"); !res.Allowed {
		t.Fatalf("other identifier should not be affected")
	}
}

func TestPoliciesAreIndependent(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l, _, _ := newTestLimiter(t, start)
	l.Configure("LOGIN", 1, 60*time.Second)
	l.Configure("REGISTRATION", 1, 60*time.Second)

	ctx := context.Background()
	l.Check(ctx, "LOGIN", "user:1")
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); res.Allowed {
		t.Fatalf("LOGIN should be exhausted")
	}
	if res, _ := l.Check(ctx, "REGISTRATION", "user:1"); !res.Allowed {
		t.Fatalf("REGISTRATION should have its own counter")
	}
}

func TestResetClearsEntry(t *testing.T) {
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l, _, _ := newTestLimiter(t, start)
	l.Configure("LOGIN", 1, 60*time.Second)

	ctx := context.Background()
	l.Check(ctx, "LOGIN", "user:1")
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); res.Allowed {
		t.Fatalf("expected denied before reset")
	}
	if err := l.Reset(ctx, "LOGIN", "user:1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res, _ := l.Check(ctx, "LOGIN", "user:1"); !res.Allowed {
		t.Fatalf("expected allowed after reset")
	}
}

func TestConfigureRejectsInvalidPolicies(t *testing.T) {
	l, _, _ := newTestLimiter(t, time.Now())
	if err := l.Configure("", 5, time.Minute); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := l.Configure("X", 0, time.Minute); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if err := l.Configure("X", 5, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestUnknownPolicyAllows(t *testing.T) {
	l, _, _ := newTestLimiter(t, time.Now())
	res, err := l.Check(context.Background(), "NOPE", "user:1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("unknown policy must fail open")
	}
}
