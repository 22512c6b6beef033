package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"upfolio-backend/internal/extract"
	"upfolio-backend/internal/shared/storage/object"
)

// Parser structures raw extracted resume text into the canonical content model.
type Parser interface {
	ParseResume(ctx context.Context, text string) (Content, error)
}

// Service contains business logic for resume versions.
type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	Parser Parser
	Now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore, parser Parser) *Service {
	return &Service{Repo: repo, Store: store, Parser: parser, Now: func() time.Time { return time.Now().UTC() }}
}

// CreateFromUpload stores the uploaded file, extracts its text, parses it into
// structured content and records the result as a new draft version.
func (s *Service) CreateFromUpload(ctx context.Context, userID, fileName string, r io.Reader) (Version, error) {
	if strings.TrimSpace(fileName) == "" {
		return Version{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	key, _, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Version{}, fmt.Errorf("store upload: %w", err)
	}

	text, err := extract.ExtractText(ctx, s.Store, key, mimeType, fileName)
	if err != nil {
		return Version{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Version{}, fmt.Errorf("%w: no text could be extracted from the file", ErrInvalidInput)
	}

	content, err := s.Parser.ParseResume(ctx, text)
	if err != nil {
		return Version{}, fmt.Errorf("parse resume: %w", err)
	}
	if err := content.Validate(); err != nil {
		return Version{}, err
	}

	return s.createDraft(ctx, userID, content, key)
}

// CreateDraft records content supplied directly by the owner as a new draft.
func (s *Service) CreateDraft(ctx context.Context, userID string, content Content) (Version, error) {
	if err := content.Validate(); err != nil {
		return Version{}, err
	}
	return s.createDraft(ctx, userID, content, "")
}

func (s *Service) createDraft(ctx context.Context, userID string, content Content, pdfKey string) (Version, error) {
	number, err := s.Repo.NextNumber(ctx, userID)
	if err != nil {
		return Version{}, err
	}
	now := s.Now()
	v := Version{
		ID:        uuid.NewString(),
		UserID:    userID,
		Number:    number,
		Content:   content,
		PDFKey:    pdfKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return Version{}, err
	}
	return v, nil
}

// Get returns a version owned by the acting user.
func (s *Service) Get(ctx context.Context, actingUserID, versionID string) (Version, error) {
	return s.Repo.GetByID(ctx, actingUserID, versionID)
}

// List returns all of the acting user's versions, newest first.
func (s *Service) List(ctx context.Context, actingUserID string) ([]Version, error) {
	return s.Repo.ListByUser(ctx, actingUserID)
}

// Edit overwrites the version's content. Publish state is untouched.
func (s *Service) Edit(ctx context.Context, actingUserID, versionID string, content Content) (Version, error) {
	if err := content.Validate(); err != nil {
		return Version{}, err
	}
	return s.Repo.UpdateContent(ctx, actingUserID, versionID, content, s.Now())
}

// Publish makes the version the user's single published one, atomically
// unpublishing any sibling and clearing the target's archived flag.
func (s *Service) Publish(ctx context.Context, actingUserID, versionID string) (Version, error) {
	return s.Repo.Publish(ctx, actingUserID, versionID, s.Now())
}

// Unpublish takes the version off the public site. The account then has no
// published version until another publish.
func (s *Service) Unpublish(ctx context.Context, actingUserID, versionID string) (Version, error) {
	return s.Repo.Unpublish(ctx, actingUserID, versionID, s.Now())
}

// Archive marks a non-published version archived. Archiving the published
// version is rejected; publish a replacement first.
func (s *Service) Archive(ctx context.Context, actingUserID, versionID string) (Version, error) {
	return s.Repo.SetArchived(ctx, actingUserID, versionID, true, s.Now())
}

// Unarchive clears the archived flag. Already-clear is a no-op; the version
// returns to draft, it is never auto-published.
func (s *Service) Unarchive(ctx context.Context, actingUserID, versionID string) (Version, error) {
	return s.Repo.SetArchived(ctx, actingUserID, versionID, false, s.Now())
}

// PublishedOrLatest returns the user's published version, falling back to the
// newest version when nothing is published.
func (s *Service) PublishedOrLatest(ctx context.Context, userID string) (Version, error) {
	v, err := s.Repo.GetPublishedByUser(ctx, userID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Version{}, err
	}
	versions, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return Version{}, err
	}
	if len(versions) == 0 {
		return Version{}, ErrNotFound
	}
	return versions[0], nil
}
