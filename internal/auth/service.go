package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/mailer"
	sharedauth "upfolio-backend/internal/shared/auth"
	"upfolio-backend/internal/shared/telemetry"
	"upfolio-backend/internal/users"
)

const (
	passwordResetTTL = time.Hour
	emailVerifyTTL   = 24 * time.Hour
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords, so login responses do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail rejects malformed registration emails.
	ErrInvalidEmail = errors.New("a valid email is required")
)

// Service implements registration, login and the token-based mail flows.
type Service struct {
	Users      users.Repo
	Tokens     TokenRepo
	Credits    *credits.Service
	Mail       mailer.Mailer
	AppBaseURL string
	Now        func() time.Time
}

// NewService constructs a Service.
func NewService(usersRepo users.Repo, tokens TokenRepo, creditSvc *credits.Service, mail mailer.Mailer, appBaseURL string) *Service {
	return &Service{
		Users:      usersRepo,
		Tokens:     tokens,
		Credits:    creditSvc,
		Mail:       mail,
		AppBaseURL: strings.TrimRight(appBaseURL, "/"),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the account, seeds its credit balance and mails a
// verification link. Returns the user and a signed session token.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (users.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return users.User{}, "", ErrInvalidEmail
	}
	if err := sharedauth.ValidatePassword(password); err != nil {
		return users.User{}, "", err
	}
	hash, err := sharedauth.HashPassword(password)
	if err != nil {
		return users.User{}, "", err
	}

	now := s.Now()
	u := users.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Visibility:   users.VisibilityPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.createWithUsername(ctx, &u, usernameBase(email)); err != nil {
		return users.User{}, "", err
	}

	// First touch initializes the account at the starting balance.
	if _, err := s.Credits.BalanceOf(ctx, u.ID); err != nil {
		telemetry.Error("seed credits failed", map[string]any{"userId": u.ID, "error": err.Error()})
	}

	if err := s.sendEmailVerification(ctx, u); err != nil {
		telemetry.Error("send verification mail failed", map[string]any{"userId": u.ID, "error": err.Error()})
	}

	token, err := sharedauth.SignJWT(u.ID, u.Email, u.FullName, u.PictureURL)
	if err != nil {
		return users.User{}, "", err
	}
	return u, token, nil
}

// Login checks the password and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (users.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, "", ErrInvalidCredentials
		}
		return users.User{}, "", err
	}
	if u.PasswordHash == "" || !sharedauth.CheckPassword(password, u.PasswordHash) {
		return users.User{}, "", ErrInvalidCredentials
	}

	token, err := sharedauth.SignJWT(u.ID, u.Email, u.FullName, u.PictureURL)
	if err != nil {
		return users.User{}, "", err
	}
	return u, token, nil
}

// RequestPasswordReset mails a reset link when the email is known. Unknown
// emails succeed silently so the endpoint cannot be used for enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return err
	}

	plain, err := s.issueToken(ctx, u.ID, PurposePasswordReset, passwordResetTTL)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Reset your password within the next hour:\n\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this mail.",
		s.AppBaseURL, plain)
	return s.Mail.Send(ctx, u.Email, "Reset your password", body)
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := sharedauth.ValidatePassword(newPassword); err != nil {
		return err
	}
	t, err := s.Tokens.Consume(ctx, PurposePasswordReset, HashToken(token), s.Now())
	if err != nil {
		return err
	}
	hash, err := sharedauth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Users.SetPassword(ctx, t.UserID, hash)
}

// RequestEmailVerification mails a fresh verification link. Already-verified
// accounts are a no-op.
func (s *Service) RequestEmailVerification(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerifiedAt != nil {
		return nil
	}
	return s.sendEmailVerification(ctx, u)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	t, err := s.Tokens.Consume(ctx, PurposeEmailVerify, HashToken(token), s.Now())
	if err != nil {
		return err
	}
	return s.Users.MarkEmailVerified(ctx, t.UserID, s.Now())
}

func (s *Service) sendEmailVerification(ctx context.Context, u users.User) error {
	plain, err := s.issueToken(ctx, u.ID, PurposeEmailVerify, emailVerifyTTL)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Welcome! Confirm your email address:\n\n%s/verify-email?token=%s",
		s.AppBaseURL, plain)
	return s.Mail.Send(ctx, u.Email, "Confirm your email", body)
}

func (s *Service) issueToken(ctx context.Context, userID string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	plain, hash, err := NewTokenValue()
	if err != nil {
		return "", err
	}
	now := s.Now()
	t := Token{
		ID:        uuid.NewString(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Tokens.Create(ctx, t); err != nil {
		return "", err
	}
	return plain, nil
}

// createWithUsername retries with randomized suffixes when the derived
// username is taken.
func (s *Service) createWithUsername(ctx context.Context, u *users.User, base string) error {
	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		u.Username = candidate
		err := s.Users.Create(ctx, *u)
		if err == nil {
			return nil
		}
		if !errors.Is(err, users.ErrUsernameTaken) {
			return err
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:4])
	}
	return users.ErrUsernameTaken
}

// usernameBase derives a valid username seed from the email local part.
func usernameBase(email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	base := strings.Trim(b.String(), "-")
	if len(base) < 3 {
		base = "user-" + uuid.NewString()[:6]
	}
	if len(base) > 24 {
		base = base[:24]
	}
	return base
}
