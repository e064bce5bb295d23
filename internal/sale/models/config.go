package models

import (
	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
)

// Config holds the immutable sale parameters. Amounts are in wei; Rate is
// token base units minted per wei.
type Config struct {
	// Self is the sale engine's account; it must own the asset ledger to mint.
	Self                domain.Address
	Controller          domain.Address
	Wallet              domain.Address
	InitialRate         *uint256.Int
	HardCap             *uint256.Int
	SoftGoal            *uint256.Int
	MinimumContribution *uint256.Int
	Window              TimeWindow
}

// Validate checks construction invariants. Every violation is a CodeValidation error.
func (c Config) Validate() error {
	switch {
	case c.Self.IsZero():
		return dErrors.New(dErrors.CodeValidation, "sale address is required")
	case c.Controller.IsZero():
		return dErrors.New(dErrors.CodeValidation, "controller address is required")
	case c.Wallet.IsZero():
		return dErrors.New(dErrors.CodeValidation, "wallet address is required")
	case isZero(c.InitialRate):
		return dErrors.New(dErrors.CodeValidation, "rate must be positive")
	case isZero(c.HardCap):
		return dErrors.New(dErrors.CodeValidation, "hard cap must be positive")
	case isZero(c.SoftGoal):
		return dErrors.New(dErrors.CodeValidation, "soft goal must be positive")
	case c.SoftGoal.Gt(c.HardCap):
		return dErrors.New(dErrors.CodeValidation, "soft goal must not exceed hard cap")
	case c.MinimumContribution == nil:
		return dErrors.New(dErrors.CodeValidation, "minimum contribution is required")
	case !c.Window.Opening.Before(c.Window.Closing):
		return dErrors.New(dErrors.CodeValidation, "opening time must be before closing time")
	}
	return nil
}

func isZero(v *uint256.Int) bool {
	return v == nil || v.IsZero()
}
