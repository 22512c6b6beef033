package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"upfolio-backend/internal/auth"
	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/users"
)

func TestDeleteCascadesAcrossStores(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	usersRepo := users.NewMemoryRepo()
	resumesRepo := resumes.NewMemoryRepo()
	tokensRepo := auth.NewMemoryTokenRepo()
	creditSvc := credits.NewService()

	owner := users.User{
		ID: "user-1", Email: "ada@example.com", Username: "ada",
		Visibility: users.VisibilityPublic, CreatedAt: now, UpdatedAt: now,
	}
	if err := usersRepo.Create(ctx, owner); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for i, id := range []string{"v1", "v2"} {
		v := resumes.Version{ID: id, UserID: owner.ID, Number: i + 1, CreatedAt: now, UpdatedAt: now}
		if err := resumesRepo.Create(ctx, v); err != nil {
			t.Fatalf("seed version: %v", err)
		}
	}
	if err := tokensRepo.Create(ctx, auth.Token{
		ID: "t1", UserID: owner.ID, Purpose: auth.PurposeEmailVerify,
		TokenHash: auth.HashToken("x"), ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if _, err := creditSvc.TryDebit(ctx, owner.ID, credits.FeatureCoverLetter); err != nil {
		t.Fatalf("seed credit usage: %v", err)
	}

	svc := NewService(usersRepo, resumesRepo, tokensRepo, creditSvc, nil)
	result, err := svc.Delete(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.DeletedVersions != 2 {
		t.Fatalf("deleted versions = %d, want 2", result.DeletedVersions)
	}

	if _, err := usersRepo.GetByID(ctx, owner.ID); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("user still present: err = %v", err)
	}
	versions, err := resumesRepo.ListByUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("versions remaining = %d", len(versions))
	}
	if _, err := tokensRepo.Consume(ctx, auth.PurposeEmailVerify, auth.HashToken("x"), now); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Fatalf("token survived cascade: err = %v", err)
	}

	// A fresh account on the same ID starts over at the seed balance.
	account, err := creditSvc.BalanceOf(ctx, owner.ID)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if account.Balance != credits.StartingBalance || account.Used != 0 {
		t.Fatalf("account after delete = %+v", account)
	}
}

func TestDeleteRequiresUserID(t *testing.T) {
	svc := NewService(users.NewMemoryRepo(), resumes.NewMemoryRepo(), auth.NewMemoryTokenRepo(), credits.NewService(), nil)
	if _, err := svc.Delete(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank user id")
	}
}
