package domain

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	dErrors "crowdsale/pkg/domain-errors"
)

// Decimals used by the native currency (wei per ether) and by default for the asset.
const (
	EtherDecimals int32 = 18
	TokenDecimals int32 = 18
)

// Ether returns n whole units of the native currency, in wei.
func Ether(n uint64) *uint256.Int {
	return Units(n, EtherDecimals)
}

// Units returns n whole units scaled by 10^decimals.
func Units(n uint64, decimals int32) *uint256.Int {
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	return new(uint256.Int).Mul(uint256.NewInt(n), scale)
}

// ParseUnits converts a human decimal string such as "2.5" into base units.
// Fractions finer than the given decimals are rejected rather than truncated.
func ParseUnits(s string, decimals int32) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "amount is not a decimal number")
	}
	if d.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount must not be negative")
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount has more precision than the unit allows")
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount overflows 256 bits")
	}
	return v, nil
}

// FormatUnits renders base units as a human decimal string.
func FormatUnits(v *uint256.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -decimals).String()
}

// ParseAmount parses a base-unit integer string such as a wei value.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount is required")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "amount must be a non-negative integer in base units")
	}
	return v, nil
}
