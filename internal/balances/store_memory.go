// Package balances persists per-address amounts grouped into named books
// (token holdings, payee receipts). It knows nothing about who may move them.
package balances

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/sentinel"
)

// Book names a set of balances.
type Book string

type InMemoryStore struct {
	mu     sync.RWMutex
	books  map[Book]map[domain.Address]*uint256.Int
	totals map[Book]*uint256.Int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		books:  make(map[Book]map[domain.Address]*uint256.Int),
		totals: make(map[Book]*uint256.Int),
	}
}

func (s *InMemoryStore) Balance(_ context.Context, book Book, addr domain.Address) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.books[book][addr]; ok {
		return v.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (s *InMemoryStore) Total(_ context.Context, book Book) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.totals[book]; ok {
		return v.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (s *InMemoryStore) Credit(_ context.Context, book Book, addr domain.Address, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.totalLocked(book)
	newTotal, overflow := new(uint256.Int).AddOverflow(total, amount)
	if overflow {
		return fmt.Errorf("credit %s: total overflows: %w", book, sentinel.ErrInvalidState)
	}

	accounts := s.books[book]
	if accounts == nil {
		accounts = make(map[domain.Address]*uint256.Int)
		s.books[book] = accounts
	}
	current, ok := accounts[addr]
	if !ok {
		current = new(uint256.Int)
	}
	// Cannot overflow: current <= total.
	accounts[addr] = new(uint256.Int).Add(current, amount)
	s.totals[book] = newTotal
	return nil
}

func (s *InMemoryStore) totalLocked(book Book) *uint256.Int {
	if v, ok := s.totals[book]; ok {
		return v
	}
	return new(uint256.Int)
}
