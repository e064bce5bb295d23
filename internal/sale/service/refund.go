package service

import (
	"context"

	"github.com/holiman/uint256"

	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/audit"
)

// ClaimRefund returns payer's escrowed deposits after a sale that missed its
// goal. A payer with nothing left to claim gets a zero refund, not an error.
// The record is zeroed before value leaves escrow.
func (s *Service) ClaimRefund(ctx context.Context, payer domain.Address) (refund *models.Refund, err error) {
	ctx, done := s.observe(ctx, opRefund)
	defer done(&err)

	if payer.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "payer must be authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var after *models.State
	amount := new(uint256.Int)
	err = s.ledger.RunInTx(ctx, func(ctx context.Context, store ports.LedgerStore) error {
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		switch state.Vault {
		case models.VaultActive:
			return dErrors.New(dErrors.CodeNotFinalized, "sale is not finalized")
		case models.VaultClosed:
			return dErrors.New(dErrors.CodeGoalWasReached, "goal was reached; nothing to refund")
		}

		record, err := store.Contribution(ctx, payer)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
		}
		if record.Deposited.IsZero() {
			return nil
		}
		if state.Escrow.Lt(record.Deposited) {
			return dErrors.New(dErrors.CodeInvariantViolation, "escrow holds less than the recorded deposit")
		}

		amount = record.Deposited
		record.Refunded = new(uint256.Int).Add(record.Refunded, amount)
		record.Deposited = new(uint256.Int)
		if err := store.SaveContribution(ctx, *record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save contribution")
		}
		state.Escrow = new(uint256.Int).Sub(state.Escrow, amount)
		if err := store.SaveState(ctx, *state); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save sale state")
		}

		if err := s.payments.Transfer(ctx, payer, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer refund")
		}
		after = state
		return nil
	})
	if err != nil {
		return nil, internalError(err, "refund transaction failed")
	}

	refund = &models.Refund{Payer: payer, Amount: amount.Clone()}
	if amount.IsZero() {
		s.logger.InfoContext(ctx, "refund claim had nothing to return", "payer", payer.String())
		return refund, nil
	}

	s.recordBalances(after)
	if s.metrics != nil {
		s.metrics.IncrementRefunds()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventRefundClaimed,
		"actor", payer,
		"payer", payer,
		"subject", payer,
		"value", amount.Dec(),
	)
	return refund, nil
}
