package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// TokenPurpose scopes a one-time token to a single flow.
type TokenPurpose string

const (
	PurposePasswordReset TokenPurpose = "password_reset"
	PurposeEmailVerify   TokenPurpose = "email_verify"
)

// Token is a single-use credential. Only the SHA-256 of the plaintext is
// stored; the plaintext goes out by mail and is never persisted.
type Token struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ErrTokenInvalid covers unknown, expired and already-consumed tokens alike.
var ErrTokenInvalid = errors.New("token invalid or expired")

// TokenRepo persists one-time tokens.
type TokenRepo interface {
	Create(ctx context.Context, t Token) error
	// Consume atomically removes and returns the live token matching purpose
	// and hash. A second consume of the same token returns ErrTokenInvalid.
	Consume(ctx context.Context, purpose TokenPurpose, tokenHash string, now time.Time) (Token, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// NewTokenValue generates a fresh token plaintext and its storage hash.
func NewTokenValue() (plain, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, HashToken(plain), nil
}

// HashToken maps a token plaintext to its storage form.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
