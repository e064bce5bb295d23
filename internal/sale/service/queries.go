package service

import (
	"context"

	"github.com/holiman/uint256"

	"crowdsale/internal/sale/models"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/requestcontext"
)

func (s *Service) Config() models.Config {
	return s.cfg
}

func (s *Service) Rate(ctx context.Context) (*uint256.Int, error) {
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	return state.Rate, nil
}

func (s *Service) InitialRate(ctx context.Context) (*uint256.Int, error) {
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	return state.InitialRate, nil
}

// WeiRaised counts public purchases and private investments.
func (s *Service) WeiRaised(ctx context.Context) (*uint256.Int, error) {
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	return state.TotalRaised, nil
}

func (s *Service) CapReached(ctx context.Context) (bool, error) {
	raised, err := s.WeiRaised(ctx)
	if err != nil {
		return false, err
	}
	return !raised.Lt(s.cfg.HardCap), nil
}

// GoalReached is live until finalization and fixed afterwards.
func (s *Service) GoalReached(ctx context.Context) (bool, error) {
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return false, err
	}
	return goalReached(state, s.cfg.SoftGoal), nil
}

func goalReached(state *models.State, goal *uint256.Int) bool {
	if state.IsFinalized() {
		return state.GoalReached
	}
	return !state.TotalRaised.Lt(goal)
}

func (s *Service) IsOpen(ctx context.Context) bool {
	return s.cfg.Window.IsOpen(requestcontext.Now(ctx))
}

func (s *Service) HasClosed(ctx context.Context) bool {
	return s.cfg.Window.HasClosed(requestcontext.Now(ctx))
}

func (s *Service) IsFinalized(ctx context.Context) (bool, error) {
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return false, err
	}
	return state.IsFinalized(), nil
}

// Contribution returns addr's record; unknown addresses get an empty one.
func (s *Service) Contribution(ctx context.Context, addr domain.Address) (*models.Contribution, error) {
	c, err := s.ledger.Contribution(ctx, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
	}
	return c, nil
}

func (s *Service) TokenSupply(ctx context.Context) (supply, maxSupply *uint256.Int, err error) {
	supply, err = s.asset.TotalSupply(ctx)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token supply")
	}
	return supply, s.asset.MaxSupply(), nil
}

func (s *Service) TokenBalance(ctx context.Context, addr domain.Address) (*uint256.Int, error) {
	bal, err := s.asset.BalanceOf(ctx, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token balance")
	}
	return bal, nil
}

// Status gathers every query into one snapshot.
func (s *Service) Status(ctx context.Context) (*models.Status, error) {
	state, err := s.loadState(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	supply, maxSupply, err := s.TokenSupply(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	return &models.Status{
		Rate:        state.Rate,
		InitialRate: state.InitialRate,
		WeiRaised:   state.TotalRaised,
		Escrow:      state.Escrow,
		HardCap:     s.cfg.HardCap.Clone(),
		SoftGoal:    s.cfg.SoftGoal.Clone(),
		Minimum:     s.cfg.MinimumContribution.Clone(),
		CapReached:  !state.TotalRaised.Lt(s.cfg.HardCap),
		GoalReached: goalReached(state, s.cfg.SoftGoal),
		IsOpen:      s.cfg.Window.IsOpen(now),
		HasClosed:   s.cfg.Window.HasClosed(now),
		Finalized:   state.IsFinalized(),
		Vault:       state.Vault,
		Window:      s.cfg.Window,
		Wallet:      s.cfg.Wallet,
		Controller:  s.controller.Owner(),
		TotalSupply: supply,
		MaxSupply:   maxSupply,
	}, nil
}
