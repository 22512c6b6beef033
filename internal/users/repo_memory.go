package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User // id -> user
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

// Create stores a new user, enforcing email and username uniqueness.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrUsernameTaken
		}
	}
	r.data[user.ID] = user
	return nil
}

// GetByID returns the user with the given ID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GetByEmail returns the user with the given email, case-insensitive.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.data {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// GetByUsername returns the user with the given username, case-insensitive.
func (r *MemoryRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.data {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// UpdateSettings overwrites username, full name, visibility, and picture.
func (r *MemoryRepo) UpdateSettings(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range r.data {
		if id != user.ID && strings.EqualFold(other.Username, user.Username) {
			return ErrUsernameTaken
		}
	}
	existing.Username = user.Username
	existing.FullName = user.FullName
	existing.Visibility = user.Visibility
	existing.PictureURL = user.PictureURL
	existing.UpdatedAt = user.UpdatedAt
	r.data[user.ID] = existing
	return nil
}

// SetPassword overwrites the stored password hash.
func (r *MemoryRepo) SetPassword(ctx context.Context, userID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.data[userID] = u
	return nil
}

// MarkEmailVerified records the verification time once.
func (r *MemoryRepo) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	if u.EmailVerifiedAt == nil {
		u.EmailVerifiedAt = &at
		u.UpdatedAt = at
		r.data[userID] = u
	}
	return nil
}

// Delete removes the user.
func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[userID]; !ok {
		return ErrNotFound
	}
	delete(r.data, userID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
