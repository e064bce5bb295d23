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

// PushPrivateInvestment records an off-channel deal: weiAmount counts toward
// the raise and tokenAmount is minted to beneficiary at the negotiated price.
// No value enters escrow, so the credit is not refundable through the sale.
// beneficiary is admitted to the whitelist if absent.
//
// Unlike BuyTokens the opening time and whitelist are not checked. Closing
// time, minimum, hard cap and supply cap are.
func (s *Service) PushPrivateInvestment(ctx context.Context, caller domain.Address, weiAmount, tokenAmount *uint256.Int, beneficiary domain.Address) (purchase *models.Purchase, err error) {
	ctx, done := s.observe(ctx, opPrivateInvestment)
	defer done(&err)
	defer func() {
		if err != nil {
			s.auditRejection(ctx, caller, beneficiary, weiAmount, err)
		}
	}()

	if weiAmount == nil {
		weiAmount = new(uint256.Int)
	}
	if tokenAmount == nil {
		tokenAmount = new(uint256.Int)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.controller.IsOwner(caller) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the controller may record private investments")
	}
	if beneficiary.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidBeneficiary, "beneficiary must not be the zero address")
	}
	now := requestcontext.Now(ctx)

	var (
		admitted bool
		after    *models.State
	)
	err = s.ledger.RunInTx(ctx, func(ctx context.Context, store ports.LedgerStore) error {
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		if state.IsFinalized() {
			return dErrors.New(dErrors.CodeSaleFinalized, "sale has been finalized")
		}
		if now.After(s.cfg.Window.Closing) {
			return dErrors.New(dErrors.CodeSaleClosed, "sale has closed")
		}
		if weiAmount.Lt(s.cfg.MinimumContribution) {
			return dErrors.New(dErrors.CodeBelowMinimum, "investment is below the minimum contribution")
		}
		raised, err := s.checkCap(state, weiAmount)
		if err != nil {
			return err
		}
		if err := s.checkSupply(ctx, tokenAmount); err != nil {
			return err
		}

		state.TotalRaised = raised
		if err := store.SaveState(ctx, *state); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save sale state")
		}
		record, err := store.Contribution(ctx, beneficiary)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
		}
		record.Private = new(uint256.Int).Add(record.Private, weiAmount)
		if err := store.SaveContribution(ctx, *record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save contribution")
		}

		n, err := s.whitelist.Add(ctx, beneficiary)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to whitelist beneficiary")
		}
		admitted = n > 0

		if err := s.asset.Mint(ctx, s.cfg.Self, beneficiary, tokenAmount); err != nil {
			return assetError(err)
		}
		after = state
		return nil
	})
	if err != nil {
		if admitted {
			s.revokeAdmission(ctx, beneficiary)
		}
		return nil, internalError(err, "private investment transaction failed")
	}

	purchase = &models.Purchase{
		Payer:       caller,
		Beneficiary: beneficiary,
		Value:       weiAmount.Clone(),
		Tokens:      tokenAmount.Clone(),
		Private:     true,
	}
	s.recordBalances(after)
	if s.metrics != nil {
		s.metrics.ObserveContribution(true, tokenAmount)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventPrivateInvestment,
		"actor", caller,
		"payer", caller,
		"subject", beneficiary,
		"value", weiAmount.Dec(),
		"tokens", tokenAmount.Dec(),
	)
	if admitted {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventWhitelistAdded,
			"actor", caller,
			"subject", beneficiary,
			"detail", "private investment",
		)
	}
	return purchase, nil
}

// revokeAdmission undoes a whitelist insert made by a private investment whose
// transaction rolled back. Stores that joined the transaction make it a no-op.
func (s *Service) revokeAdmission(ctx context.Context, beneficiary domain.Address) {
	if err := s.whitelist.Remove(context.WithoutCancel(ctx), beneficiary); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke whitelist admission",
			"beneficiary", beneficiary.String(),
			"error", err,
		)
	}
}
