// Package ownership is the single-controller capability: one address may
// perform privileged operations and may hand that right to another address.
package ownership

import (
	"sync"

	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
)

type Ownable struct {
	mu    sync.RWMutex
	owner domain.Address
}

func New(owner domain.Address) (*Ownable, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner must not be the zero address")
	}
	return &Ownable{owner: owner}, nil
}

func (o *Ownable) Owner() domain.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

func (o *Ownable) IsOwner(addr domain.Address) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return !addr.IsZero() && addr == o.owner
}

// TransferOwnership hands ownership to newOwner. Only the current owner may call it.
func (o *Ownable) TransferOwnership(caller, newOwner domain.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller.IsZero() || caller != o.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner")
	}
	if newOwner.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "new owner must not be the zero address")
	}
	o.owner = newOwner
	return nil
}
