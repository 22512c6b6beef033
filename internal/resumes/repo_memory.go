package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores versions in memory and is safe for concurrent use. All
// state changes happen under one mutex, so a reader never observes two
// published versions for the same user.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Version
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Version)}
}

// Create stores the version.
func (r *MemoryRepo) Create(ctx context.Context, v Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[v.ID] = v
	return nil
}

// GetByID returns a version owned by the user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, versionID string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownedLocked(userID, versionID)
}

// ListByUser returns all of the user's versions, newest number first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Version{}
	for _, v := range r.byID {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

// GetPublishedByUser returns the user's published version.
func (r *MemoryRepo) GetPublishedByUser(ctx context.Context, userID string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.byID {
		if v.UserID == userID && v.IsPublished {
			return v, nil
		}
	}
	return Version{}, ErrNotFound
}

// NextNumber returns max(number)+1 for the user.
func (r *MemoryRepo) NextNumber(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, v := range r.byID {
		if v.UserID == userID && v.Number > max {
			max = v.Number
		}
	}
	return max + 1, nil
}

// UpdateContent overwrites the version content.
func (r *MemoryRepo) UpdateContent(ctx context.Context, userID, versionID string, content Content, updatedAt time.Time) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.ownedLocked(userID, versionID)
	if err != nil {
		return Version{}, err
	}
	v.Content = content
	v.UpdatedAt = updatedAt
	r.byID[versionID] = v
	return v, nil
}

// Publish unpublishes the user's other versions and publishes the target,
// clearing its archived flag, all under one lock.
func (r *MemoryRepo) Publish(ctx context.Context, userID, versionID string, updatedAt time.Time) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.ownedLocked(userID, versionID)
	if err != nil {
		return Version{}, err
	}
	for id, sibling := range r.byID {
		if sibling.UserID == userID && sibling.IsPublished && id != versionID {
			sibling.IsPublished = false
			sibling.UpdatedAt = updatedAt
			r.byID[id] = sibling
		}
	}
	v.IsPublished = true
	v.IsArchived = false
	v.UpdatedAt = updatedAt
	r.byID[versionID] = v
	return v, nil
}

// Unpublish clears the published flag. Already-unpublished is a no-op.
func (r *MemoryRepo) Unpublish(ctx context.Context, userID, versionID string, updatedAt time.Time) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.ownedLocked(userID, versionID)
	if err != nil {
		return Version{}, err
	}
	if v.IsPublished {
		v.IsPublished = false
		v.UpdatedAt = updatedAt
		r.byID[versionID] = v
	}
	return v, nil
}

// SetArchived flips the archived flag. Archiving a published version is
// rejected; clearing an already-clear flag is a no-op.
func (r *MemoryRepo) SetArchived(ctx context.Context, userID, versionID string, archived bool, updatedAt time.Time) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.ownedLocked(userID, versionID)
	if err != nil {
		return Version{}, err
	}
	if archived && v.IsPublished {
		return Version{}, ErrInvalidTransition
	}
	if v.IsArchived != archived {
		v.IsArchived = archived
		v.UpdatedAt = updatedAt
		r.byID[versionID] = v
	}
	return v, nil
}

// DeleteByUser removes all of the user's versions.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.byID {
		if v.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *MemoryRepo) ownedLocked(userID, versionID string) (Version, error) {
	v, ok := r.byID[versionID]
	if !ok {
		return Version{}, ErrNotFound
	}
	if v.UserID != userID {
		return Version{}, ErrNotOwner
	}
	return v, nil
}

var _ Repo = (*MemoryRepo)(nil)
