package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/llm"
	"upfolio-backend/internal/resumes"
)

type stubLLM struct {
	response json.RawMessage
	err      error
	calls    int
	lastIn   llm.Input
}

func (s *stubLLM) Generate(_ context.Context, in llm.Input) (json.RawMessage, error) {
	s.calls++
	s.lastIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func newTestService(t *testing.T, client llm.Client) (*Service, string) {
	t.Helper()

	resumeSvc := resumes.NewService(resumes.NewMemoryRepo(), nil, nil)
	resumeSvc.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	content := resumes.Content{
		Header: resumes.Header{Name: "Ada", Title: "Backend Engineer"},
		Experience: []resumes.Experience{
			{Company: "Acme", Role: "Engineer", Start: "2021-04", End: "Present"},
		},
	}
	v, err := resumeSvc.CreateDraft(context.Background(), "user-1", content)
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	if _, err := resumeSvc.Publish(context.Background(), "user-1", v.ID); err != nil {
		t.Fatalf("seed publish: %v", err)
	}

	return NewService(resumeSvc, credits.NewService(), client), "user-1"
}

func TestJobFitDebitsThenGenerates(t *testing.T) {
	client := &stubLLM{response: json.RawMessage(`{"score":82,"strengths":["Go"],"gaps":["Kafka"],"summary":"Strong fit."}`)}
	svc, userID := newTestService(t, client)
	ctx := context.Background()

	result, debit, err := svc.JobFit(ctx, userID, "Backend engineer role")
	if err != nil {
		t.Fatalf("JobFit: %v", err)
	}
	if result.Score != 82 || result.Summary != "Strong fit." {
		t.Fatalf("unexpected result: %+v", result)
	}
	if debit.Cost != 2 || debit.Balance != credits.StartingBalance-2 {
		t.Fatalf("debit = %+v, want cost 2 and balance %d", debit, credits.StartingBalance-2)
	}
	if client.calls != 1 {
		t.Fatalf("llm calls = %d, want 1", client.calls)
	}
	if client.lastIn.Task != llm.TaskJobFit {
		t.Fatalf("llm task = %q, want %q", client.lastIn.Task, llm.TaskJobFit)
	}
	if client.lastIn.ResumeJSON == "" || client.lastIn.JobDescription != "Backend engineer role" {
		t.Fatalf("llm input missing resume or job description: %+v", client.lastIn)
	}
}

func TestInsufficientCreditsSkipsLLM(t *testing.T) {
	client := &stubLLM{response: json.RawMessage(`{"coverLetter":"Dear team"}`)}
	svc, userID := newTestService(t, client)
	ctx := context.Background()

	// Drain the balance to below the cheapest remaining feature.
	for {
		debit, err := svc.Credits.TryDebit(ctx, userID, credits.FeatureTailoredResume)
		if err != nil {
			t.Fatalf("drain: %v", err)
		}
		if !debit.Allowed {
			break
		}
		if debit.Balance < 20 {
			break
		}
	}
	before, err := svc.Credits.BalanceOf(ctx, userID)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if before.Balance >= 10 {
		t.Fatalf("drain left balance at %d, want < 10", before.Balance)
	}

	_, debit, err := svc.CoverLetter(ctx, userID, "Backend engineer role")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if client.calls != 0 {
		t.Fatalf("llm was called %d times on a denied debit", client.calls)
	}
	if debit.Cost != 10 || debit.Balance != before.Balance {
		t.Fatalf("denied debit = %+v, want cost 10 and untouched balance %d", debit, before.Balance)
	}

	after, err := svc.Credits.BalanceOf(ctx, userID)
	if err != nil {
		t.Fatalf("BalanceOf after denial: %v", err)
	}
	if after.Balance != before.Balance {
		t.Fatalf("balance changed from %d to %d on a denied debit", before.Balance, after.Balance)
	}
}

func TestLLMFailureKeepsDebit(t *testing.T) {
	client := &stubLLM{err: errors.New("upstream timeout")}
	svc, userID := newTestService(t, client)
	ctx := context.Background()

	_, debit, err := svc.TailoredResume(ctx, userID, "Backend engineer role")
	if err == nil || errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want the upstream failure", err)
	}
	if !debit.Allowed || debit.Cost != 20 {
		t.Fatalf("debit = %+v, want an allowed 20-credit debit", debit)
	}

	// The debit stands: a failed generation is not refunded.
	a, err := svc.Credits.BalanceOf(ctx, userID)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if a.Balance != credits.StartingBalance-20 {
		t.Fatalf("balance = %d, want %d", a.Balance, credits.StartingBalance-20)
	}
}

func TestEmptyJobDescriptionRejectedBeforeDebit(t *testing.T) {
	client := &stubLLM{}
	svc, userID := newTestService(t, client)
	ctx := context.Background()

	if _, _, err := svc.JobFit(ctx, userID, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	a, err := svc.Credits.BalanceOf(ctx, userID)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if a.Balance != credits.StartingBalance {
		t.Fatalf("balance = %d, want untouched %d", a.Balance, credits.StartingBalance)
	}
}

func TestNoResumeVersion(t *testing.T) {
	client := &stubLLM{}
	svc, _ := newTestService(t, client)
	ctx := context.Background()

	// user-2 never uploaded anything.
	if _, _, err := svc.JobFit(ctx, "user-2", "Backend engineer role"); !errors.Is(err, ErrNoResume) {
		t.Fatalf("err = %v, want ErrNoResume", err)
	}
	if client.calls != 0 {
		t.Fatalf("llm was called %d times without a resume", client.calls)
	}
}

func TestTailoredResumeDecodesContent(t *testing.T) {
	raw := `{"header":{"name":"Ada","title":"Platform Engineer"},"summary":["Tailored for the role."]}`
	client := &stubLLM{response: json.RawMessage(raw)}
	svc, userID := newTestService(t, client)

	content, debit, err := svc.TailoredResume(context.Background(), userID, "Platform engineer role")
	if err != nil {
		t.Fatalf("TailoredResume: %v", err)
	}
	if content.Header.Title != "Platform Engineer" {
		t.Fatalf("tailored title = %q", content.Header.Title)
	}
	if debit.Cost != 20 {
		t.Fatalf("cost = %d, want 20", debit.Cost)
	}
	if client.lastIn.Task != llm.TaskTailoredResume {
		t.Fatalf("llm task = %q", client.lastIn.Task)
	}
}
