package service

import (
	"context"

	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/audit"
)

// TransferOwnership hands the controller role to newOwner.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) (err error) {
	ctx, done := s.observe(ctx, opTransferOwnership)
	defer done(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.controller.TransferOwnership(caller, newOwner); err != nil {
		return err
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventOwnershipTransferred,
		"actor", caller,
		"subject", newOwner,
	)
	return nil
}

// Owner returns the current controller.
func (s *Service) Owner() domain.Address {
	return s.controller.Owner()
}
