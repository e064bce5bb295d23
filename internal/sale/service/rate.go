package service

import (
	"context"

	"github.com/holiman/uint256"

	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/audit"
	"crowdsale/pkg/requestcontext"
)

// ChangeRate sets the current rate. The floor is the initial rate, not the
// rate in effect before the change, so the controller may lower a raised
// rate back down but never below the starting price.
func (s *Service) ChangeRate(ctx context.Context, caller domain.Address, newRate *uint256.Int) (err error) {
	ctx, done := s.observe(ctx, opChangeRate)
	defer done(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.controller.IsOwner(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the controller may change the rate")
	}
	if s.cfg.Window.HasClosed(requestcontext.Now(ctx)) {
		return dErrors.New(dErrors.CodeSaleClosed, "sale has closed")
	}

	var previous *uint256.Int
	err = s.ledger.RunInTx(ctx, func(ctx context.Context, store ports.LedgerStore) error {
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		if newRate == nil || newRate.Lt(state.InitialRate) {
			return dErrors.New(dErrors.CodeRateBelowFloor, "rate must not be below the initial rate")
		}
		previous = state.Rate
		state.Rate = newRate.Clone()
		if err := store.SaveState(ctx, *state); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save sale state")
		}
		return nil
	})
	if err != nil {
		return internalError(err, "rate change transaction failed")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventRateChanged,
		"actor", caller,
		"detail", previous.Dec()+" -> "+newRate.Dec(),
	)
	return nil
}
