package credits

import "context"

// Service gates and accounts for metered AI feature usage.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// TryDebit charges the feature's fixed cost if the balance covers it. The
// caller must check Allowed BEFORE invoking the costed external call; a
// short balance leaves the account untouched.
func (s *Service) TryDebit(ctx context.Context, userID string, feature Feature) (DebitResult, error) {
	cost, ok := PriceOf(feature)
	if !ok {
		return DebitResult{}, ErrUnknownFeature
	}
	a, debited, err := s.store.Debit(ctx, userID, cost)
	if err != nil {
		return DebitResult{}, err
	}
	return DebitResult{
		Allowed: debited,
		Cost:    cost,
		Balance: a.Balance,
		Used:    a.Used,
	}, nil
}

// Grant is an administrative top-up; no end-user path calls it.
func (s *Service) Grant(ctx context.Context, userID string, amount int) (Account, error) {
	if amount <= 0 {
		return Account{}, ErrInvalidAmount
	}
	return s.store.Grant(ctx, userID, amount)
}

// BalanceOf returns the current balance and cumulative usage, initializing
// the account on first touch.
func (s *Service) BalanceOf(ctx context.Context, userID string) (Account, error) {
	return s.store.Get(ctx, userID)
}

// DeleteAccount removes the credit account. Part of the account deletion
// cascade; a fresh account on the same user ID starts over at the starting
// balance.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}
