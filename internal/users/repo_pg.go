package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, username, full_name, picture_url, password_hash, visibility, email_verified_at, created_at, updated_at`

// Create inserts a new user.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, username, full_name, picture_url, password_hash, visibility, email_verified_at, created_at, updated_at)
VALUES ($1, lower($2), lower($3), $4, $5, $6, $7, $8, $9, $10)`

	var passwordHash sql.NullString
	if user.PasswordHash != "" {
		passwordHash = sql.NullString{String: user.PasswordHash, Valid: true}
	}
	var verifiedAt sql.NullTime
	if user.EmailVerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *user.EmailVerifiedAt, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.FullName,
		user.PictureURL,
		passwordHash,
		string(user.Visibility),
		verifiedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// GetByID fetches a user by ID.
func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// GetByEmail fetches a user by email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
}

// GetByUsername fetches a user by username.
func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = lower($1)`, username)
}

// UpdateSettings overwrites username, full name, visibility, and picture.
func (r *PGRepo) UpdateSettings(ctx context.Context, user User) error {
	const query = `
UPDATE users
SET username = lower($1), full_name = $2, visibility = $3, picture_url = $4, updated_at = $5
WHERE id = $6`
	res, err := r.DB.ExecContext(ctx, query,
		user.Username,
		user.FullName,
		string(user.Visibility),
		user.PictureURL,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword overwrites the stored password hash.
func (r *PGRepo) SetPassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkEmailVerified records the verification time once.
func (r *PGRepo) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verified_at = COALESCE(email_verified_at, $1), updated_at = $1 WHERE id = $2`,
		at, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user row. Owned rows cascade via foreign keys.
func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (User, error) {
	var (
		u            User
		passwordHash sql.NullString
		verifiedAt   sql.NullTime
		visibility   string
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FullName,
		&u.PictureURL,
		&passwordHash,
		&visibility,
		&verifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	u.Visibility = Visibility(visibility)
	return u, nil
}

func mapUniqueViolation(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users_email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users_username"):
		return ErrUsernameTaken
	}
	return err
}

var _ Repo = (*PGRepo)(nil)
