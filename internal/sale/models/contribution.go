package models

import (
	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
)

// Contribution is one address's standing with the sale.
//
// Deposited is escrow-backed value paid by the address on the public path and
// is what a refund returns. Private is value credited by the controller for
// an off-channel private investment; it never entered escrow and is not
// refundable through the sale.
type Contribution struct {
	Address   domain.Address
	Deposited *uint256.Int
	Private   *uint256.Int
	Refunded  *uint256.Int
}

func NewContribution(addr domain.Address) Contribution {
	return Contribution{
		Address:   addr,
		Deposited: new(uint256.Int),
		Private:   new(uint256.Int),
		Refunded:  new(uint256.Int),
	}
}

func (c Contribution) Clone() Contribution {
	return Contribution{
		Address:   c.Address,
		Deposited: c.Deposited.Clone(),
		Private:   c.Private.Clone(),
		Refunded:  c.Refunded.Clone(),
	}
}

// Total is Deposited + Private.
func (c Contribution) Total() *uint256.Int {
	return new(uint256.Int).Add(c.Deposited, c.Private)
}
