package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenRepo stores tokens in memory and is safe for concurrent use.
type MemoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemoryTokenRepo constructs a MemoryTokenRepo.
func NewMemoryTokenRepo() *MemoryTokenRepo {
	return &MemoryTokenRepo{tokens: make(map[string]Token)}
}

// Create stores the token.
func (r *MemoryTokenRepo) Create(ctx context.Context, t Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.ID] = t
	return nil
}

// Consume removes and returns the live token matching purpose and hash.
func (r *MemoryTokenRepo) Consume(ctx context.Context, purpose TokenPurpose, tokenHash string, now time.Time) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.Purpose != purpose || t.TokenHash != tokenHash {
			continue
		}
		delete(r.tokens, id)
		if now.After(t.ExpiresAt) {
			return Token{}, ErrTokenInvalid
		}
		return t, nil
	}
	return Token{}, ErrTokenInvalid
}

// DeleteByUser removes all of the user's tokens.
func (r *MemoryTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

var _ TokenRepo = (*MemoryTokenRepo)(nil)
