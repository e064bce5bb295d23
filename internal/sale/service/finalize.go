package service

import (
	"context"

	"github.com/holiman/uint256"

	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/audit"
	"crowdsale/pkg/requestcontext"
)

// Finalize closes the sale once, after the window has closed. If the soft
// goal was reached the whole escrow goes to the wallet in one transfer and
// the vault closes; otherwise the escrow stays put and refunds open.
func (s *Service) Finalize(ctx context.Context, caller domain.Address) (result *models.Finalization, err error) {
	ctx, done := s.observe(ctx, opFinalize)
	defer done(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.controller.IsOwner(caller) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the controller may finalize")
	}
	now := requestcontext.Now(ctx)
	if !s.cfg.Window.HasClosed(now) {
		return nil, dErrors.New(dErrors.CodeTooEarly, "sale has not closed yet")
	}

	var after *models.State
	err = s.ledger.RunInTx(ctx, func(ctx context.Context, store ports.LedgerStore) error {
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		if state.IsFinalized() {
			return dErrors.New(dErrors.CodeAlreadyFinalized, "sale is already finalized")
		}

		forwarded := new(uint256.Int)
		state.GoalReached = !state.TotalRaised.Lt(s.cfg.SoftGoal)
		state.FinalizedAt = &now
		if state.GoalReached {
			forwarded = state.Escrow
			state.Escrow = new(uint256.Int)
			state.Vault = models.VaultClosed
		} else {
			state.Vault = models.VaultRefunding
		}
		if err := store.SaveState(ctx, *state); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save sale state")
		}

		if state.GoalReached {
			if err := s.payments.Transfer(ctx, s.cfg.Wallet, forwarded); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to forward escrow to wallet")
			}
		}
		result = &models.Finalization{
			GoalReached: state.GoalReached,
			TotalRaised: state.TotalRaised.Clone(),
			Forwarded:   forwarded,
			Vault:       state.Vault,
			At:          now,
		}
		after = state
		return nil
	})
	if err != nil {
		return nil, internalError(err, "finalization transaction failed")
	}

	s.recordBalances(after)
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventFinalized,
		"actor", caller,
		"subject", s.cfg.Wallet,
		"value", result.Forwarded.Dec(),
		"detail", string(result.Vault),
	)
	return result, nil
}
