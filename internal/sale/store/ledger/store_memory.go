package ledger

import (
	"context"
	"sync"

	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/sentinel"
)

// InMemoryStore keeps the sale aggregate in process memory. Transactions run
// against a private copy that replaces the live data only on success.
type InMemoryStore struct {
	txMu          sync.Mutex
	mu            sync.RWMutex
	state         *models.State
	contributions map[domain.Address]models.Contribution
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{contributions: make(map[domain.Address]models.Contribution)}
}

func (s *InMemoryStore) Init(_ context.Context, state models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		cp := state.Clone()
		s.state = &cp
	}
	return nil
}

func (s *InMemoryStore) LoadState(_ context.Context) (*models.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := s.state.Clone()
	return &cp, nil
}

func (s *InMemoryStore) SaveState(_ context.Context, state models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return sentinel.ErrNotFound
	}
	cp := state.Clone()
	s.state = &cp
	return nil
}

func (s *InMemoryStore) Contribution(_ context.Context, addr domain.Address) (*models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contributions[addr]
	if !ok {
		c = models.NewContribution(addr)
	} else {
		c = c.Clone()
	}
	return &c, nil
}

func (s *InMemoryStore) SaveContribution(_ context.Context, c models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions[c.Address] = c.Clone()
	return nil
}

// RunInTx serializes transactions. fn works on a snapshot; the snapshot is
// committed only if fn returns nil.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.LedgerStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx, snapshot); err != nil {
		return err
	}

	snapshot.mu.RLock()
	defer snapshot.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snapshot.state
	s.contributions = snapshot.contributions
	return nil
}

func (s *InMemoryStore) snapshot() *InMemoryStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := &InMemoryStore{contributions: make(map[domain.Address]models.Contribution, len(s.contributions))}
	if s.state != nil {
		st := s.state.Clone()
		cp.state = &st
	}
	for addr, c := range s.contributions {
		cp.contributions[addr] = c.Clone()
	}
	return cp
}
