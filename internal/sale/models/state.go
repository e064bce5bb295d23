package models

import (
	"time"

	"github.com/holiman/uint256"
)

// VaultState tags the escrow. Active accepts deposits; finalization moves it
// to Closed (goal reached, escrow released) or Refunding (goal missed).
type VaultState string

const (
	VaultActive    VaultState = "active"
	VaultRefunding VaultState = "refunding"
	VaultClosed    VaultState = "closed"
)

func (v VaultState) IsValid() bool {
	switch v {
	case VaultActive, VaultRefunding, VaultClosed:
		return true
	}
	return false
}

// State is the mutable sale aggregate.
type State struct {
	InitialRate *uint256.Int
	Rate        *uint256.Int
	// TotalRaised counts public deposits and private investments.
	TotalRaised *uint256.Int
	// Escrow holds public deposits not yet released or refunded.
	Escrow *uint256.Int
	Vault  VaultState
	// GoalReached is fixed at finalization. Use Service.GoalReached for the live value.
	GoalReached bool
	FinalizedAt *time.Time
}

// NewState returns the state of a sale that has not taken any contribution.
func NewState(initialRate *uint256.Int) State {
	return State{
		InitialRate: initialRate.Clone(),
		Rate:        initialRate.Clone(),
		TotalRaised: new(uint256.Int),
		Escrow:      new(uint256.Int),
		Vault:       VaultActive,
	}
}

func (s State) IsFinalized() bool {
	return s.Vault != VaultActive
}

// Clone returns a deep copy; amounts are pointers.
func (s State) Clone() State {
	out := s
	out.InitialRate = s.InitialRate.Clone()
	out.Rate = s.Rate.Clone()
	out.TotalRaised = s.TotalRaised.Clone()
	out.Escrow = s.Escrow.Clone()
	if s.FinalizedAt != nil {
		t := *s.FinalizedAt
		out.FinalizedAt = &t
	}
	return out
}
