package credits

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Account
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Account)}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(userID), nil
}

func (s *memoryStore) Debit(ctx context.Context, userID string, cost int) (Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.ensure(userID)
	if a.Balance < cost {
		return a, false, nil
	}
	a.Balance -= cost
	a.Used += cost
	a.UpdatedAt = time.Now().UTC()
	s.data[userID] = a
	return a, true, nil
}

func (s *memoryStore) Grant(ctx context.Context, userID string, amount int) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.ensure(userID)
	a.Balance += amount
	a.UpdatedAt = time.Now().UTC()
	s.data[userID] = a
	return a, nil
}

func (s *memoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

// ensure must be called with the mutex held.
func (s *memoryStore) ensure(userID string) Account {
	a, ok := s.data[userID]
	if !ok {
		a = defaultAccount(userID, time.Now().UTC())
		s.data[userID] = a
	}
	return a
}

var _ store = (*memoryStore)(nil)
