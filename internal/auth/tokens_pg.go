package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGTokenRepo implements TokenRepo using Postgres.
type PGTokenRepo struct {
	DB *sql.DB
}

// Create inserts a token.
func (r *PGTokenRepo) Create(ctx context.Context, t Token) error {
	const query = `
INSERT INTO auth_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.UserID, string(t.Purpose), t.TokenHash, t.ExpiresAt, t.CreatedAt)
	return err
}

// Consume deletes and returns the live token in one statement, so two
// concurrent confirms cannot both succeed on the same token.
func (r *PGTokenRepo) Consume(ctx context.Context, purpose TokenPurpose, tokenHash string, now time.Time) (Token, error) {
	const query = `
DELETE FROM auth_tokens
WHERE purpose = $1 AND token_hash = $2 AND expires_at > $3
RETURNING id, user_id, purpose, token_hash, expires_at, created_at`

	var t Token
	err := r.DB.QueryRowContext(ctx, query, string(purpose), tokenHash, now).Scan(
		&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrTokenInvalid
		}
		return Token{}, err
	}
	return t, nil
}

// DeleteByUser removes all of the user's tokens.
func (r *PGTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}

var _ TokenRepo = (*PGTokenRepo)(nil)
