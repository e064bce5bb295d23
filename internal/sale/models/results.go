package models

import (
	"time"

	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
)

// Purchase describes a settled contribution, public or private.
type Purchase struct {
	Payer       domain.Address
	Beneficiary domain.Address
	Value       *uint256.Int
	Tokens      *uint256.Int
	Private     bool
}

type Finalization struct {
	GoalReached bool
	TotalRaised *uint256.Int
	// Forwarded is the escrow released to the wallet; zero when refunds open.
	Forwarded *uint256.Int
	Vault     VaultState
	At        time.Time
}

type Refund struct {
	Payer  domain.Address
	Amount *uint256.Int
}

// Status aggregates every read-only query.
type Status struct {
	Rate        *uint256.Int
	InitialRate *uint256.Int
	WeiRaised   *uint256.Int
	Escrow      *uint256.Int
	HardCap     *uint256.Int
	SoftGoal    *uint256.Int
	Minimum     *uint256.Int
	CapReached  bool
	GoalReached bool
	IsOpen      bool
	HasClosed   bool
	Finalized   bool
	Vault       VaultState
	Window      TimeWindow
	Wallet      domain.Address
	Controller  domain.Address
	TotalSupply *uint256.Int
	MaxSupply   *uint256.Int
}
