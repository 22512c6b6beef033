package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed credit store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Account, error) {
	a, err := s.read(ctx, userID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Account{}, err
	}
	return s.init(ctx, userID)
}

// Debit is a single conditional UPDATE so the check and the decrement are one
// atomic statement; concurrent debits for the same user serialize on the row.
func (s *pgStore) Debit(ctx context.Context, userID string, cost int) (Account, bool, error) {
	const query = `
UPDATE user_credits
SET balance = balance - $2, used = used + $2, updated_at = $3
WHERE user_id = $1 AND balance >= $2
RETURNING balance, used, updated_at`

	var a Account
	a.UserID = userID
	err := s.DB.QueryRowContext(ctx, query, userID, cost, time.Now().UTC()).
		Scan(&a.Balance, &a.Used, &a.UpdatedAt)
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Account{}, false, err
	}

	// Either the balance was short or the row does not exist yet.
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Account{}, false, err
	}
	if current.Balance >= cost {
		// The row appeared (or was topped up) between the two statements;
		// retry the conditional update once.
		err = s.DB.QueryRowContext(ctx, query, userID, cost, time.Now().UTC()).
			Scan(&a.Balance, &a.Used, &a.UpdatedAt)
		if err == nil {
			return a, true, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Account{}, false, err
		}
	}
	return current, false, nil
}

func (s *pgStore) Grant(ctx context.Context, userID string, amount int) (Account, error) {
	const query = `
INSERT INTO user_credits (user_id, balance, used, updated_at)
VALUES ($1, $2 + $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET balance = user_credits.balance + $3, updated_at = EXCLUDED.updated_at
RETURNING balance, used, updated_at`

	var a Account
	a.UserID = userID
	err := s.DB.QueryRowContext(ctx, query, userID, StartingBalance, amount, time.Now().UTC()).
		Scan(&a.Balance, &a.Used, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func (s *pgStore) Delete(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM user_credits WHERE user_id = $1`, userID)
	return err
}

func (s *pgStore) read(ctx context.Context, userID string) (Account, error) {
	var a Account
	a.UserID = userID
	err := s.DB.QueryRowContext(ctx,
		`SELECT balance, used, updated_at FROM user_credits WHERE user_id = $1`, userID).
		Scan(&a.Balance, &a.Used, &a.UpdatedAt)
	return a, err
}

func (s *pgStore) init(ctx context.Context, userID string) (Account, error) {
	const query = `
INSERT INTO user_credits (user_id, balance, used, updated_at)
VALUES ($1, $2, 0, $3)
ON CONFLICT (user_id) DO UPDATE SET updated_at = user_credits.updated_at
RETURNING balance, used, updated_at`

	var a Account
	a.UserID = userID
	err := s.DB.QueryRowContext(ctx, query, userID, StartingBalance, time.Now().UTC()).
		Scan(&a.Balance, &a.Used, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

var _ store = (*pgStore)(nil)
