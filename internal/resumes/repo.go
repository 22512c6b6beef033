package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for resume versions.
//
// Mutations take the acting user's ID and report ErrNotOwner when the version
// exists but belongs to someone else. Publish must flip the published flag off
// all of the user's other versions and on for the target in one atomic step,
// and SetArchived(true) must fail with ErrInvalidTransition while the version
// is published.
type Repo interface {
	Create(ctx context.Context, v Version) error
	GetByID(ctx context.Context, userID, versionID string) (Version, error)
	ListByUser(ctx context.Context, userID string) ([]Version, error)
	// GetPublishedByUser returns the user's published version, or ErrNotFound.
	GetPublishedByUser(ctx context.Context, userID string) (Version, error)
	// NextNumber returns max(version number)+1 for the user, starting at 1.
	NextNumber(ctx context.Context, userID string) (int, error)
	UpdateContent(ctx context.Context, userID, versionID string, content Content, updatedAt time.Time) (Version, error)
	Publish(ctx context.Context, userID, versionID string, updatedAt time.Time) (Version, error)
	Unpublish(ctx context.Context, userID, versionID string, updatedAt time.Time) (Version, error)
	SetArchived(ctx context.Context, userID, versionID string, archived bool, updatedAt time.Time) (Version, error)
	DeleteByUser(ctx context.Context, userID string) error
}
