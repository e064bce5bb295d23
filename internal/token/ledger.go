// Package token is the capped, mintable asset ledger. Only the current owner
// may mint, and total supply never exceeds the cap, pre-allocation included.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"

	"crowdsale/internal/balances"
	"crowdsale/internal/ownership"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
)

// Book is the balances book holding token holdings.
const Book balances.Book = "token"

// Store persists holdings. Implemented by balances.InMemoryStore and balances.PostgresStore.
type Store interface {
	Balance(ctx context.Context, book balances.Book, addr domain.Address) (*uint256.Int, error)
	Total(ctx context.Context, book balances.Book) (*uint256.Int, error)
	Credit(ctx context.Context, book balances.Book, addr domain.Address, amount *uint256.Int) error
}

// Allocation is an ecosystem pre-allocation minted at construction.
type Allocation struct {
	To     domain.Address
	Amount *uint256.Int
}

type Ledger struct {
	mu        sync.Mutex
	store     Store
	owner     *ownership.Ownable
	maxSupply *uint256.Int
	decimals  int32
	logger    *slog.Logger
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithDecimals(decimals int32) Option {
	return func(l *Ledger) {
		l.decimals = decimals
	}
}

// New creates a ledger owned by deployer and mints allocations when the store
// is empty. A store that already holds supply is resumed as is.
func New(ctx context.Context, store Store, deployer domain.Address, maxSupply *uint256.Int, allocations []Allocation, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if maxSupply == nil || maxSupply.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "max supply must be positive")
	}
	owner, err := ownership.New(deployer)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		store:     store,
		owner:     owner,
		maxSupply: maxSupply.Clone(),
		decimals:  domain.TokenDecimals,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.preallocate(ctx, allocations); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) preallocate(ctx context.Context, allocations []Allocation) error {
	supply, err := l.store.Total(ctx, Book)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token supply")
	}
	if !supply.IsZero() {
		return nil
	}

	sum := new(uint256.Int)
	for _, a := range allocations {
		if a.To.IsZero() {
			return dErrors.New(dErrors.CodeInvariantViolation, "allocation recipient must not be the zero address")
		}
		var overflow bool
		sum, overflow = new(uint256.Int).AddOverflow(sum, a.Amount)
		if overflow || sum.Gt(l.maxSupply) {
			return dErrors.New(dErrors.CodeInvariantViolation, "allocations exceed max supply")
		}
	}

	for _, a := range allocations {
		if err := l.store.Credit(ctx, Book, a.To, a.Amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint allocation")
		}
		if l.logger != nil {
			l.logger.InfoContext(ctx, "token allocation minted",
				"to", a.To.String(),
				"amount", domain.FormatUnits(a.Amount, l.decimals),
			)
		}
	}
	return nil
}

// Mint creates amount new units for to. Fails with CodeUnauthorized unless
// minter owns the ledger, and with CodeSupplyExceeded past the cap.
func (l *Ledger) Mint(ctx context.Context, minter, to domain.Address, amount *uint256.Int) error {
	if !l.owner.IsOwner(minter) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the token owner may mint")
	}
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot mint to the zero address")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	supply, err := l.store.Total(ctx, Book)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token supply")
	}
	next, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow || next.Gt(l.maxSupply) {
		return dErrors.New(dErrors.CodeSupplyExceeded, "mint would exceed max supply")
	}
	if err := l.store.Credit(ctx, Book, to, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit minted tokens")
	}
	return nil
}

func (l *Ledger) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	supply, err := l.store.Total(ctx, Book)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token supply")
	}
	return supply, nil
}

func (l *Ledger) BalanceOf(ctx context.Context, addr domain.Address) (*uint256.Int, error) {
	bal, err := l.store.Balance(ctx, Book, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token balance")
	}
	return bal, nil
}

func (l *Ledger) MaxSupply() *uint256.Int {
	return l.maxSupply.Clone()
}

func (l *Ledger) Decimals() int32 {
	return l.decimals
}

func (l *Ledger) Owner() domain.Address {
	return l.owner.Owner()
}

// TransferOwnership hands minting rights to newOwner, typically the sale engine.
func (l *Ledger) TransferOwnership(caller, newOwner domain.Address) error {
	return l.owner.TransferOwnership(caller, newOwner)
}
