package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,31}$`)

// ErrInvalidUsername is returned when a username fails validation.
var ErrInvalidUsername = errors.New("username must be 3-32 lowercase letters, digits, or hyphens")

// Service contains account profile logic.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// GetByID returns the user with the given ID.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// GetByUsername returns the user with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	if strings.TrimSpace(username) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByUsername(ctx, username)
}

// SettingsUpdate carries the fields a user may change on their own account.
// Nil pointers leave the current value untouched.
type SettingsUpdate struct {
	Username   *string
	FullName   *string
	Visibility *string
	PictureURL *string
}

// UpdateSettings validates and applies a settings change for the acting user.
func (s *Service) UpdateSettings(ctx context.Context, userID string, update SettingsUpdate) (User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if update.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*update.Username))
		if !usernamePattern.MatchString(username) {
			return User{}, ErrInvalidUsername
		}
		u.Username = username
	}
	if update.FullName != nil {
		u.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.Visibility != nil {
		visibility, ok := ParseVisibility(strings.TrimSpace(*update.Visibility))
		if !ok {
			return User{}, errors.New("visibility must be public or private")
		}
		u.Visibility = visibility
	}
	if update.PictureURL != nil {
		u.PictureURL = strings.TrimSpace(*update.PictureURL)
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.Repo.UpdateSettings(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// ValidateUsername reports whether the raw value is an acceptable username.
func ValidateUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if !usernamePattern.MatchString(username) {
		return "", ErrInvalidUsername
	}
	return username, nil
}
