package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const versionColumns = `id, user_id, version_number, content, pdf_key, is_published, is_archived, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a version.
func (r *PGRepo) Create(ctx context.Context, v Version) error {
	content, err := json.Marshal(v.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	const query = `
INSERT INTO resume_versions (id, user_id, version_number, content, pdf_key, is_published, is_archived, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.DB.ExecContext(ctx, query,
		v.ID, v.UserID, v.Number, content, v.PDFKey, v.IsPublished, v.IsArchived, v.CreatedAt, v.UpdatedAt)
	return err
}

// GetByID returns a version owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, versionID string) (Version, error) {
	const query = `SELECT ` + versionColumns + ` FROM resume_versions WHERE id = $1 LIMIT 1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, versionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	if v.UserID != userID {
		return Version{}, ErrNotOwner
	}
	return v, nil
}

// ListByUser returns the user's versions, newest number first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Version, error) {
	const query = `
SELECT ` + versionColumns + `
FROM resume_versions
WHERE user_id = $1
ORDER BY version_number DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetPublishedByUser returns the user's published version.
func (r *PGRepo) GetPublishedByUser(ctx context.Context, userID string) (Version, error) {
	const query = `
SELECT ` + versionColumns + `
FROM resume_versions
WHERE user_id = $1 AND is_published
LIMIT 1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// NextNumber returns max(version_number)+1 for the user.
func (r *PGRepo) NextNumber(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COALESCE(MAX(version_number), 0) + 1 FROM resume_versions WHERE user_id = $1`
	var next int
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// UpdateContent overwrites the version content.
func (r *PGRepo) UpdateContent(ctx context.Context, userID, versionID string, content Content, updatedAt time.Time) (Version, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return Version{}, fmt.Errorf("marshal content: %w", err)
	}
	const query = `
UPDATE resume_versions
SET content = $3, updated_at = $4
WHERE id = $1 AND user_id = $2
RETURNING ` + versionColumns
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, versionID, userID, raw, updatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if classifyErr := r.classify(ctx, userID, versionID); classifyErr != nil {
				return Version{}, classifyErr
			}
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// Publish runs as one transaction: lock the target row, unpublish siblings,
// publish the target with its archived flag cleared. A concurrent reader sees
// either the old published version or the new one, never both or neither
// committed states in between.
func (r *PGRepo) Publish(ctx context.Context, userID, versionID string, updatedAt time.Time) (Version, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, err
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM resume_versions WHERE id = $1 FOR UPDATE`, versionID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	if ownerID != userID {
		return Version{}, ErrNotOwner
	}

	_, err = tx.ExecContext(ctx, `
UPDATE resume_versions
SET is_published = false, updated_at = $3
WHERE user_id = $1 AND is_published AND id <> $2`, userID, versionID, updatedAt)
	if err != nil {
		return Version{}, err
	}

	v, err := scanVersion(tx.QueryRowContext(ctx, `
UPDATE resume_versions
SET is_published = true, is_archived = false, updated_at = $3
WHERE id = $1 AND user_id = $2
RETURNING `+versionColumns, versionID, userID, updatedAt))
	if err != nil {
		return Version{}, err
	}

	if err := tx.Commit(); err != nil {
		return Version{}, err
	}
	return v, nil
}

// Unpublish clears the published flag.
func (r *PGRepo) Unpublish(ctx context.Context, userID, versionID string, updatedAt time.Time) (Version, error) {
	const query = `
UPDATE resume_versions
SET is_published = false, updated_at = CASE WHEN is_published THEN $3 ELSE updated_at END
WHERE id = $1 AND user_id = $2
RETURNING ` + versionColumns
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, versionID, userID, updatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if classifyErr := r.classify(ctx, userID, versionID); classifyErr != nil {
				return Version{}, classifyErr
			}
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// SetArchived flips the archived flag. The published guard lives in the WHERE
// clause so a concurrent publish cannot slip an archive past it.
func (r *PGRepo) SetArchived(ctx context.Context, userID, versionID string, archived bool, updatedAt time.Time) (Version, error) {
	const query = `
UPDATE resume_versions
SET is_archived = $3, updated_at = CASE WHEN is_archived <> $3 THEN $4 ELSE updated_at END
WHERE id = $1 AND user_id = $2 AND NOT (is_published AND $3)
RETURNING ` + versionColumns
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, versionID, userID, archived, updatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if classifyErr := r.classify(ctx, userID, versionID); classifyErr != nil {
				return Version{}, classifyErr
			}
			// Row exists and is owned, so the published guard rejected it.
			return Version{}, ErrInvalidTransition
		}
		return Version{}, err
	}
	return v, nil
}

// DeleteByUser removes all of the user's versions.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM resume_versions WHERE user_id = $1`, userID)
	return err
}

// classify distinguishes not-found from not-owned after an update matched no
// row. Returns nil when the row exists and is owned by the user.
func (r *PGRepo) classify(ctx context.Context, userID, versionID string) error {
	var ownerID string
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id FROM resume_versions WHERE id = $1`, versionID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrNotOwner
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (Version, error) {
	var (
		v   Version
		raw []byte
	)
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Number,
		&raw,
		&v.PDFKey,
		&v.IsPublished,
		&v.IsArchived,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return Version{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v.Content); err != nil {
			return Version{}, fmt.Errorf("unmarshal content: %w", err)
		}
	}
	return v, nil
}

var _ Repo = (*PGRepo)(nil)
