package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/users"
)

func seed(t *testing.T, visibility users.Visibility, publish bool) (*Service, users.User) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	usersRepo := users.NewMemoryRepo()
	owner := users.User{
		ID:         "owner-1",
		Email:      "ada@example.com",
		Username:   "ada",
		FullName:   "Ada Lovelace",
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usersRepo.Create(ctx, owner); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	resumesRepo := resumes.NewMemoryRepo()
	v := resumes.Version{
		ID:     "v1",
		UserID: owner.ID,
		Number: 1,
		Content: resumes.Content{
			Header: resumes.Header{Name: "Ada Lovelace", Title: "Engineer"},
		},
		IsPublished: publish,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := resumesRepo.Create(ctx, v); err != nil {
		t.Fatalf("seed version: %v", err)
	}

	return NewService(usersRepo, resumesRepo), owner
}

func TestResolvePublicAccount(t *testing.T) {
	svc, _ := seed(t, users.VisibilityPublic, true)

	view, err := svc.Resolve(context.Background(), "ada", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Username != "ada" || view.Content.Header.Name != "Ada Lovelace" {
		t.Fatalf("view = %+v", view)
	}
}

func TestResolvePrivateAccountHiddenFromOthers(t *testing.T) {
	svc, _ := seed(t, users.VisibilityPrivate, true)

	if _, err := svc.Resolve(context.Background(), "ada", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("anonymous viewer: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Resolve(context.Background(), "ada", "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user: err = %v, want ErrNotFound", err)
	}
}

func TestResolveOwnerPreviewBypassesVisibility(t *testing.T) {
	svc, owner := seed(t, users.VisibilityPrivate, true)

	view, err := svc.Resolve(context.Background(), "ada", owner.ID)
	if err != nil {
		t.Fatalf("owner preview: %v", err)
	}
	if view.Content.Header.Name != "Ada Lovelace" {
		t.Fatalf("view = %+v", view)
	}
}

func TestResolveDenialsAreIndistinguishable(t *testing.T) {
	svcPrivate, _ := seed(t, users.VisibilityPrivate, true)
	svcUnpublished, _ := seed(t, users.VisibilityPublic, false)

	_, errUnknown := svcPrivate.Resolve(context.Background(), "no-such-user", "")
	_, errPrivate := svcPrivate.Resolve(context.Background(), "ada", "")
	_, errUnpublished := svcUnpublished.Resolve(context.Background(), "ada", "")

	for name, err := range map[string]error{
		"unknown username": errUnknown,
		"private account":  errPrivate,
		"no published":     errUnpublished,
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: err = %v, want ErrNotFound", name, err)
		}
	}
	if errUnknown.Error() != errPrivate.Error() || errPrivate.Error() != errUnpublished.Error() {
		t.Fatalf("deny errors differ: %q / %q / %q", errUnknown, errPrivate, errUnpublished)
	}
}
