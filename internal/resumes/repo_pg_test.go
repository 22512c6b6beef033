package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func versionRow(v Version, content string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "version_number", "content", "pdf_key",
		"is_published", "is_archived", "created_at", "updated_at",
	}).AddRow(v.ID, v.UserID, v.Number, []byte(content), v.PDFKey,
		v.IsPublished, v.IsArchived, v.CreatedAt, v.UpdatedAt)
}

func TestPGRepoPublishRunsSingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	target := Version{
		ID: "v2", UserID: "user-1", Number: 2,
		IsPublished: true, IsArchived: false,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM resume_versions").
		WithArgs("v2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1"))
	mock.ExpectExec("UPDATE resume_versions").
		WithArgs("user-1", "v2", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE resume_versions").
		WithArgs("v2", "user-1", now).
		WillReturnRows(versionRow(target, `{"header":{"name":"Ada"}}`))
	mock.ExpectCommit()

	v, err := repo.Publish(context.Background(), "user-1", "v2", now)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !v.IsPublished || v.IsArchived {
		t.Fatalf("published=%v archived=%v", v.IsPublished, v.IsArchived)
	}
	if v.Content.Header.Name != "Ada" {
		t.Fatalf("content name = %q", v.Content.Header.Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoPublishRollsBackForNonOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM resume_versions").
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("someone-else"))
	mock.ExpectRollback()

	if _, err := repo.Publish(context.Background(), "user-1", "v1", now); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("Publish: err = %v, want ErrNotOwner", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetArchivedRejectsPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	// Guarded update matches nothing, then the row turns out to exist and be
	// owned, which means the published guard fired.
	mock.ExpectQuery("UPDATE resume_versions").
		WithArgs("v1", "user-1", true, now).
		WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectQuery("SELECT user_id FROM resume_versions").
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1"))

	if _, err := repo.SetArchived(context.Background(), "user-1", "v1", true, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("SetArchived: err = %v, want ErrInvalidTransition", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDOwnership(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	v := Version{ID: "v1", UserID: "someone-else", Number: 1, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM resume_versions").
		WithArgs("v1").
		WillReturnRows(versionRow(v, `{}`))

	if _, err := repo.GetByID(context.Background(), "user-1", "v1"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("GetByID: err = %v, want ErrNotOwner", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
