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

// BuyTokens settles a public purchase of value wei paid by payer. Tokens are
// minted to beneficiary at the current rate; the refund credit and the escrow
// entry are recorded against payer.
//
// Checks run in order: payer identified, window open, beneficiary set,
// beneficiary whitelisted, minimum, hard cap, supply cap.
func (s *Service) BuyTokens(ctx context.Context, payer, beneficiary domain.Address, value *uint256.Int) (purchase *models.Purchase, err error) {
	ctx, done := s.observe(ctx, opPurchase)
	defer done(&err)
	defer func() {
		if err != nil {
			s.auditRejection(ctx, payer, beneficiary, value, err)
		}
	}()

	if value == nil {
		value = new(uint256.Int)
	}
	if payer.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "payer must be authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Window.IsOpen(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeSaleNotOpen, "sale is not open")
	}
	if beneficiary.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidBeneficiary, "beneficiary must not be the zero address")
	}

	var (
		tokens *uint256.Int
		after  *models.State
	)
	err = s.ledger.RunInTx(ctx, func(ctx context.Context, store ports.LedgerStore) error {
		listed, err := s.whitelist.Contains(ctx, beneficiary)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check whitelist")
		}
		if !listed {
			return dErrors.New(dErrors.CodeNotWhitelisted, "beneficiary is not whitelisted")
		}
		if value.Lt(s.cfg.MinimumContribution) {
			return dErrors.New(dErrors.CodeBelowMinimum, "value is below the minimum contribution")
		}

		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		raised, err := s.checkCap(state, value)
		if err != nil {
			return err
		}
		minted, overflow := new(uint256.Int).MulOverflow(value, state.Rate)
		if overflow {
			return dErrors.New(dErrors.CodeSupplyExceeded, "token amount overflows")
		}
		if err := s.checkSupply(ctx, minted); err != nil {
			return err
		}

		state.TotalRaised = raised
		state.Escrow = new(uint256.Int).Add(state.Escrow, value)
		if err := store.SaveState(ctx, *state); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save sale state")
		}
		record, err := store.Contribution(ctx, payer)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
		}
		record.Deposited = new(uint256.Int).Add(record.Deposited, value)
		if err := store.SaveContribution(ctx, *record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save contribution")
		}

		if err := s.asset.Mint(ctx, s.cfg.Self, beneficiary, minted); err != nil {
			return assetError(err)
		}
		tokens, after = minted, state
		return nil
	})
	if err != nil {
		return nil, internalError(err, "purchase transaction failed")
	}

	purchase = &models.Purchase{
		Payer:       payer,
		Beneficiary: beneficiary,
		Value:       value.Clone(),
		Tokens:      tokens,
	}
	s.recordBalances(after)
	if s.metrics != nil {
		s.metrics.ObserveContribution(false, tokens)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventPurchase,
		"actor", payer,
		"payer", payer,
		"subject", beneficiary,
		"value", value.Dec(),
		"tokens", tokens.Dec(),
	)
	return purchase, nil
}

// checkCap returns totalRaised + value, or CapExceeded if that passes the hard cap.
func (s *Service) checkCap(state *models.State, value *uint256.Int) (*uint256.Int, error) {
	raised, overflow := new(uint256.Int).AddOverflow(state.TotalRaised, value)
	if overflow || raised.Gt(s.cfg.HardCap) {
		return nil, dErrors.New(dErrors.CodeCapExceeded, "contribution would exceed the hard cap")
	}
	return raised, nil
}

// checkSupply rejects a mint of tokens that would push total supply past the cap.
func (s *Service) checkSupply(ctx context.Context, tokens *uint256.Int) error {
	supply, err := s.asset.TotalSupply(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token supply")
	}
	next, overflow := new(uint256.Int).AddOverflow(supply, tokens)
	if overflow || next.Gt(s.asset.MaxSupply()) {
		return dErrors.New(dErrors.CodeSupplyExceeded, "mint would exceed max supply")
	}
	return nil
}

func (s *Service) auditRejection(ctx context.Context, payer, beneficiary domain.Address, value *uint256.Int, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		return
	}
	amount := "0"
	if value != nil {
		amount = value.Dec()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventContributionRejected,
		"actor", payer,
		"payer", payer,
		"subject", beneficiary,
		"value", amount,
		"detail", string(code),
	)
}
