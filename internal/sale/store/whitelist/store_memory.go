package whitelist

import (
	"context"
	"sync"

	"crowdsale/pkg/domain"
)

// InMemoryStore keeps whitelisted addresses in a set.
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[domain.Address]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{members: make(map[domain.Address]struct{})}
}

func (s *InMemoryStore) Add(_ context.Context, addrs ...domain.Address) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, addr := range addrs {
		if _, ok := s.members[addr]; ok {
			continue
		}
		s.members[addr] = struct{}{}
		added++
	}
	return added, nil
}

func (s *InMemoryStore) Remove(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, addr)
	return nil
}

func (s *InMemoryStore) Contains(_ context.Context, addr domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[addr]
	return ok, nil
}
