package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"upfolio-backend/internal/auth"
	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/shared/storage/object"
	"upfolio-backend/internal/shared/telemetry"
	"upfolio-backend/internal/users"
)

// Service deletes accounts: the user row, every resume version, the credit
// account and any outstanding one-time tokens go together.
type Service struct {
	UsersRepo   users.Repo
	ResumesRepo resumes.Repo
	TokensRepo  auth.TokenRepo
	Credits     *credits.Service
	Store       object.ObjectStore
}

// DeleteResult reports what the cascade removed.
type DeleteResult struct {
	DeletedVersions int `json:"deletedVersions"`
}

// NewService constructs a Service.
func NewService(usersRepo users.Repo, resumesRepo resumes.Repo, tokensRepo auth.TokenRepo, creditSvc *credits.Service, store object.ObjectStore) *Service {
	return &Service{
		UsersRepo:   usersRepo,
		ResumesRepo: resumesRepo,
		TokensRepo:  tokensRepo,
		Credits:     creditSvc,
		Store:       store,
	}
}

// Delete removes the account and everything hanging off it. Against Postgres
// the row deletes run in one transaction; uploaded files are removed after
// the commit, and a failed file delete only logs since the rows are gone.
func (s *Service) Delete(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("user id is required")
	}

	versions, err := s.ResumesRepo.ListByUser(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}

	if usersPG, ok := s.UsersRepo.(*users.PGRepo); ok && usersPG != nil && usersPG.DB != nil {
		if err := deleteWithTx(ctx, usersPG.DB, userID); err != nil {
			return DeleteResult{}, err
		}
	} else {
		if err := s.ResumesRepo.DeleteByUser(ctx, userID); err != nil {
			return DeleteResult{}, err
		}
		if err := s.TokensRepo.DeleteByUser(ctx, userID); err != nil {
			return DeleteResult{}, err
		}
		if err := s.Credits.DeleteAccount(ctx, userID); err != nil {
			return DeleteResult{}, err
		}
		if err := s.UsersRepo.Delete(ctx, userID); err != nil && !errors.Is(err, users.ErrNotFound) {
			return DeleteResult{}, err
		}
	}

	s.deleteUploads(ctx, versions)

	return DeleteResult{DeletedVersions: len(versions)}, nil
}

func deleteWithTx(ctx context.Context, db *sql.DB, userID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM resume_versions WHERE user_id = $1`,
		`DELETE FROM auth_tokens WHERE user_id = $1`,
		`DELETE FROM user_credits WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Service) deleteUploads(ctx context.Context, versions []resumes.Version) {
	if s.Store == nil {
		return
	}
	for _, v := range versions {
		if v.PDFKey == "" {
			continue
		}
		if err := s.Store.Delete(ctx, v.PDFKey); err != nil {
			telemetry.Error("delete upload failed", map[string]any{
				"storageKey": v.PDFKey,
				"error":      err.Error(),
			})
		}
	}
}
