// Package payments moves value out of the sale to payees: the bulk escrow
// release to the wallet and individual refunds. Received amounts are kept in a
// balances book so operators can reconcile payouts.
package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"

	"crowdsale/internal/balances"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
)

// Book is the balances book recording amounts paid out to each payee.
const Book balances.Book = "payments"

type Store interface {
	Balance(ctx context.Context, book balances.Book, addr domain.Address) (*uint256.Int, error)
	Credit(ctx context.Context, book balances.Book, addr domain.Address, amount *uint256.Int) error
}

type Transferor struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Transferor)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transferor) {
		t.logger = logger
	}
}

func New(store Store, opts ...Option) (*Transferor, error) {
	if store == nil {
		return nil, fmt.Errorf("payments store is required")
	}
	t := &Transferor{store: store}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Transfer forwards amount to recipient. A zero amount is a no-op.
func (t *Transferor) Transfer(ctx context.Context, to domain.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot transfer to the zero address")
	}
	if amount.IsZero() {
		return nil
	}
	if err := t.store.Credit(ctx, Book, to, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer")
	}
	if t.logger != nil {
		t.logger.InfoContext(ctx, "value transferred",
			"to", to.String(),
			"amount", amount.Dec(),
		)
	}
	return nil
}

// Received returns the total paid out to addr.
func (t *Transferor) Received(ctx context.Context, addr domain.Address) (*uint256.Int, error) {
	v, err := t.store.Balance(ctx, Book, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read payout balance")
	}
	return v, nil
}
