package service

import (
	"context"

	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/audit"
	pstrings "crowdsale/pkg/platform/strings"
)

// AddToWhitelist admits addr to public purchases. Adding a member again is a no-op.
func (s *Service) AddToWhitelist(ctx context.Context, caller, addr domain.Address) (err error) {
	ctx, done := s.observe(ctx, opWhitelistAdd)
	defer done(&err)

	_, err = s.addToWhitelist(ctx, caller, []domain.Address{addr})
	return err
}

// AddManyToWhitelist admits every address in addrs or none of them, and
// reports how many were not members before.
func (s *Service) AddManyToWhitelist(ctx context.Context, caller domain.Address, addrs []domain.Address) (added int, err error) {
	ctx, done := s.observe(ctx, opWhitelistAddMany)
	defer done(&err)

	return s.addToWhitelist(ctx, caller, addrs)
}

func (s *Service) addToWhitelist(ctx context.Context, caller domain.Address, addrs []domain.Address) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWhitelistEdit(ctx, caller); err != nil {
		return 0, err
	}
	addrs = pstrings.Dedupe(addrs)
	if len(addrs) == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "at least one address is required")
	}
	for _, addr := range addrs {
		if addr.IsZero() {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "cannot whitelist the zero address")
		}
	}

	added, err := s.whitelist.Add(ctx, addrs...)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update whitelist")
	}
	for _, addr := range addrs {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventWhitelistAdded,
			"actor", caller,
			"subject", addr,
		)
	}
	return added, nil
}

// RemoveFromWhitelist revokes addr. Removing a non-member is a no-op.
func (s *Service) RemoveFromWhitelist(ctx context.Context, caller, addr domain.Address) (err error) {
	ctx, done := s.observe(ctx, opWhitelistRemove)
	defer done(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWhitelistEdit(ctx, caller); err != nil {
		return err
	}
	if err := s.whitelist.Remove(ctx, addr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update whitelist")
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventWhitelistRemoved,
		"actor", caller,
		"subject", addr,
	)
	return nil
}

// checkWhitelistEdit allows edits by the controller until finalization.
func (s *Service) checkWhitelistEdit(ctx context.Context, caller domain.Address) error {
	if !s.controller.IsOwner(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "only the controller may edit the whitelist")
	}
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return err
	}
	if state.IsFinalized() {
		return dErrors.New(dErrors.CodeSaleFinalized, "sale has been finalized")
	}
	return nil
}

func (s *Service) IsWhitelisted(ctx context.Context, addr domain.Address) (bool, error) {
	ok, err := s.whitelist.Contains(ctx, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check whitelist")
	}
	return ok, nil
}
