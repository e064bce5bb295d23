// Package ports defines the interfaces the sale service consumes.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/ports_mock.go -package=mocks

import (
	"context"
	"log/slog"

	"github.com/holiman/uint256"

	"crowdsale/internal/sale/models"
	"crowdsale/pkg/attrs"
	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/audit"
	"crowdsale/pkg/requestcontext"
)

// AuditPublisher emits audit events for committed state changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LedgerStore persists the sale aggregate and contribution records.
//
// RunInTx gives fn a store whose writes become visible only if fn returns nil.
// fn must use the ctx it is given so that collaborators sharing the backing
// database join the same transaction.
type LedgerStore interface {
	// Init stores state if none exists yet. An existing state is left untouched.
	Init(ctx context.Context, state models.State) error

	// LoadState returns sentinel.ErrNotFound before Init.
	LoadState(ctx context.Context) (*models.State, error)
	SaveState(ctx context.Context, state models.State) error

	// Contribution returns an empty record for unknown addresses.
	Contribution(ctx context.Context, addr domain.Address) (*models.Contribution, error)
	SaveContribution(ctx context.Context, c models.Contribution) error

	RunInTx(ctx context.Context, fn func(ctx context.Context, store LedgerStore) error) error
}

// WhitelistStore holds the addresses allowed to receive tokens from public purchases.
type WhitelistStore interface {
	// Add inserts addrs atomically and reports how many were new.
	Add(ctx context.Context, addrs ...domain.Address) (int, error)
	// Remove deletes addr; removing a non-member is not an error.
	Remove(ctx context.Context, addr domain.Address) error
	Contains(ctx context.Context, addr domain.Address) (bool, error)
}

// AssetLedger is the capped mintable token.
type AssetLedger interface {
	Mint(ctx context.Context, minter, to domain.Address, amount *uint256.Int) error
	TotalSupply(ctx context.Context) (*uint256.Int, error)
	BalanceOf(ctx context.Context, addr domain.Address) (*uint256.Int, error)
	MaxSupply() *uint256.Int
}

// Payments forwards value out of the sale.
type Payments interface {
	Transfer(ctx context.Context, to domain.Address, amount *uint256.Int) error
}

// LogAudit logs an audit event and emits it to the publisher if available.
// Well-known attribute keys (actor, subject, payer, value, tokens, detail)
// are copied onto the emitted event.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, kv ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		kv = append(kv, "request_id", requestID)
	}
	args := append(kv, "event", string(event), "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	e := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		Actor:     attrs.ExtractString(kv, "actor"),
		Subject:   attrs.ExtractString(kv, "subject"),
		Payer:     attrs.ExtractString(kv, "payer"),
		Value:     attrs.ExtractString(kv, "value"),
		Tokens:    attrs.ExtractString(kv, "tokens"),
		Detail:    attrs.ExtractString(kv, "detail"),
		RequestID: requestID,
	}
	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
