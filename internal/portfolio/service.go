package portfolio

import (
	"context"
	"errors"

	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/users"
)

// ErrNotFound covers every deny case: unknown username, private account
// viewed by someone else, or no published version. A caller cannot tell
// which one fired.
var ErrNotFound = errors.New("portfolio not found")

// View is the public portfolio payload.
type View struct {
	Username    string
	FullName    string
	Content     resumes.Content
	PublishedAt string
}

// Service resolves public portfolio pages.
type Service struct {
	Users   users.Repo
	Resumes resumes.Repo
}

// NewService constructs a Service.
func NewService(usersRepo users.Repo, resumesRepo resumes.Repo) *Service {
	return &Service{Users: usersRepo, Resumes: resumesRepo}
}

// Resolve returns the portfolio for username as seen by viewerUserID
// (empty for anonymous viewers). The owner always sees their published
// version; everyone else only when the account is public.
func (s *Service) Resolve(ctx context.Context, username, viewerUserID string) (View, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, err
	}

	isOwner := viewerUserID != "" && viewerUserID == u.ID
	if !isOwner && u.Visibility != users.VisibilityPublic {
		return View{}, ErrNotFound
	}

	v, err := s.Resumes.GetPublishedByUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, err
	}

	return View{
		Username:    u.Username,
		FullName:    u.FullName,
		Content:     v.Content,
		PublishedAt: v.UpdatedAt.Format("2006-01-02"),
	}, nil
}
