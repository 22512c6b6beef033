package credits

import (
	"context"
	"sync"
	"testing"
)

func TestTryDebitSequenceAccumulatesUsage(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	steps := []struct {
		feature     Feature
		wantBalance int
		wantUsed    int
	}{
		{FeatureJobFitAnalysis, 498, 2},
		{FeatureCoverLetter, 488, 12},
		{FeatureTailoredResume, 468, 32},
	}
	for _, step := range steps {
		res, err := svc.TryDebit(ctx, "user-1", step.feature)
		if err != nil {
			t.Fatalf("TryDebit(%s): %v", step.feature, err)
		}
		if !res.Allowed {
			t.Fatalf("TryDebit(%s): expected allowed", step.feature)
		}
		if res.Balance != step.wantBalance {
			t.Fatalf("TryDebit(%s): balance = %d, want %d", step.feature, res.Balance, step.wantBalance)
		}
		if res.Used != step.wantUsed {
			t.Fatalf("TryDebit(%s): used = %d, want %d", step.feature, res.Used, step.wantUsed)
		}
	}
}

func TestTryDebitRejectsShortBalanceWithoutChange(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	// Drain the starting balance down to 20.
	for i := 0; i < 24; i++ {
		if _, err := svc.TryDebit(ctx, "user-1", FeatureTailoredResume); err != nil {
			t.Fatalf("drain debit %d: %v", i, err)
		}
	}
	a, _ := svc.BalanceOf(ctx, "user-1")
	if a.Balance != 20 {
		t.Fatalf("setup balance = %d, want 20", a.Balance)
	}

	// 20 covers one more tailored resume but nothing after that.
	res, err := svc.TryDebit(ctx, "user-1", FeatureTailoredResume)
	if err != nil || !res.Allowed {
		t.Fatalf("TryDebit at exact cost: res=%+v err=%v", res, err)
	}
	res, err = svc.TryDebit(ctx, "user-1", FeatureCoverLetter)
	if err != nil {
		t.Fatalf("TryDebit past zero: %v", err)
	}
	if res.Allowed {
		t.Fatalf("expected debit rejected at zero balance")
	}
	if res.Balance != 0 {
		t.Fatalf("rejected debit changed balance to %d", res.Balance)
	}
}

func TestTryDebitNeverDrivesBalanceNegative(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	// Leave exactly 5 on the account.
	svc.store.(*memoryStore).data["user-1"] = Account{UserID: "user-1", Balance: 5}

	res, err := svc.TryDebit(ctx, "user-1", FeatureCoverLetter)
	if err != nil {
		t.Fatalf("TryDebit: %v", err)
	}
	if res.Allowed {
		t.Fatalf("expected rejection: balance 5 cannot cover cost 10")
	}
	if res.Balance != 5 {
		t.Fatalf("balance = %d, want unchanged 5", res.Balance)
	}
	if res.Cost != 10 {
		t.Fatalf("cost = %d, want 10", res.Cost)
	}
}

func TestTryDebitUnknownFeature(t *testing.T) {
	svc := NewService()
	if _, err := svc.TryDebit(context.Background(), "user-1", Feature("mystery")); err != ErrUnknownFeature {
		t.Fatalf("err = %v, want ErrUnknownFeature", err)
	}
}

func TestConcurrentDebitsNoDoubleSpend(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	// Balance covers exactly one tailored resume.
	svc.store.(*memoryStore).data["user-1"] = Account{UserID: "user-1", Balance: 20}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.TryDebit(ctx, "user-1", FeatureTailoredResume)
			if err != nil {
				t.Errorf("TryDebit: %v", err)
				return
			}
			if res.Allowed {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}
	a, _ := svc.BalanceOf(ctx, "user-1")
	if a.Balance != 0 {
		t.Fatalf("final balance = %d, want 0", a.Balance)
	}
}

func TestGrantIncreasesBalance(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	a, err := svc.Grant(ctx, "user-1", 50)
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if a.Balance != StartingBalance+50 {
		t.Fatalf("balance = %d, want %d", a.Balance, StartingBalance+50)
	}
	if _, err := svc.Grant(ctx, "user-1", 0); err != ErrInvalidAmount {
		t.Fatalf("Grant(0) err = %v, want ErrInvalidAmount", err)
	}
}

func TestBalanceOfInitializesAccount(t *testing.T) {
	svc := NewService()
	a, err := svc.BalanceOf(context.Background(), "fresh-user")
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if a.Balance != StartingBalance || a.Used != 0 {
		t.Fatalf("fresh account = %+v", a)
	}
}
