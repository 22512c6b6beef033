package credits

import "context"

// store persists credit accounts. Debit must be atomic per user: two
// concurrent debits may not both succeed against a balance that only covers
// one of them.
type store interface {
	// Get returns the account, creating it at the starting balance if absent.
	Get(ctx context.Context, userID string) (Account, error)
	// Debit decrements balance by cost and bumps the cumulative counter if
	// and only if balance >= cost. The bool reports whether the debit
	// happened; either way the returned Account is the current state.
	Debit(ctx context.Context, userID string, cost int) (Account, bool, error)
	// Grant increases the balance by amount.
	Grant(ctx context.Context, userID string, amount int) (Account, error)
	// Delete removes the account. Missing accounts are not an error.
	Delete(ctx context.Context, userID string) error
}
