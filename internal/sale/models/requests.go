package models

import (
	"time"

	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	pstrings "crowdsale/pkg/platform/strings"
)

// Amounts on the wire are decimal strings in base units (wei, token base units).

type PurchaseRequest struct {
	Beneficiary string `json:"beneficiary"`
	Value       string `json:"value"`
}

type ParsedPurchase struct {
	Beneficiary domain.Address
	Value       *uint256.Int
}

func (r PurchaseRequest) Parse() (ParsedPurchase, error) {
	beneficiary, err := domain.ParseAddress(r.Beneficiary)
	if err != nil {
		return ParsedPurchase{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid beneficiary")
	}
	value, err := domain.ParseAmount(r.Value)
	if err != nil {
		return ParsedPurchase{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid value")
	}
	return ParsedPurchase{Beneficiary: beneficiary, Value: value}, nil
}

type PrivateInvestmentRequest struct {
	WeiAmount   string `json:"wei_amount"`
	TokenAmount string `json:"token_amount"`
	Beneficiary string `json:"beneficiary"`
}

type ParsedPrivateInvestment struct {
	WeiAmount   *uint256.Int
	TokenAmount *uint256.Int
	Beneficiary domain.Address
}

func (r PrivateInvestmentRequest) Parse() (ParsedPrivateInvestment, error) {
	wei, err := domain.ParseAmount(r.WeiAmount)
	if err != nil {
		return ParsedPrivateInvestment{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid wei_amount")
	}
	tokens, err := domain.ParseAmount(r.TokenAmount)
	if err != nil {
		return ParsedPrivateInvestment{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid token_amount")
	}
	beneficiary, err := domain.ParseAddress(r.Beneficiary)
	if err != nil {
		return ParsedPrivateInvestment{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid beneficiary")
	}
	return ParsedPrivateInvestment{WeiAmount: wei, TokenAmount: tokens, Beneficiary: beneficiary}, nil
}

type ChangeRateRequest struct {
	Rate string `json:"rate"`
}

func (r ChangeRateRequest) Parse() (*uint256.Int, error) {
	rate, err := domain.ParseAmount(r.Rate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "rate must be a non-negative integer")
	}
	return rate, nil
}

type WhitelistRequest struct {
	Address string `json:"address"`
}

func (r WhitelistRequest) Parse() (domain.Address, error) {
	addr, err := domain.ParseAddress(r.Address)
	if err != nil {
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid address")
	}
	return addr, nil
}

type WhitelistBatchRequest struct {
	Addresses []string `json:"addresses"`
}

// Parse trims and de-duplicates input. One malformed address rejects the batch.
func (r WhitelistBatchRequest) Parse() ([]domain.Address, error) {
	raw := pstrings.DedupeAndTrim(r.Addresses)
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "addresses must not be empty")
	}
	out := make([]domain.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := domain.ParseAddress(s)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid address "+s)
		}
		out = append(out, addr)
	}
	return pstrings.Dedupe(out), nil
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

func (r TransferOwnershipRequest) Parse() (domain.Address, error) {
	addr, err := domain.ParseAddress(r.NewOwner)
	if err != nil {
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid new_owner")
	}
	return addr, nil
}

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

type PurchaseResponse struct {
	Payer       domain.Address `json:"payer"`
	Beneficiary domain.Address `json:"beneficiary"`
	Value       string         `json:"value"`
	Tokens      string         `json:"tokens"`
	Private     bool           `json:"private"`
}

func NewPurchaseResponse(p *Purchase) PurchaseResponse {
	return PurchaseResponse{
		Payer:       p.Payer,
		Beneficiary: p.Beneficiary,
		Value:       p.Value.Dec(),
		Tokens:      p.Tokens.Dec(),
		Private:     p.Private,
	}
}

type RateResponse struct {
	Rate        string `json:"rate"`
	InitialRate string `json:"initial_rate"`
}

type WhitelistResponse struct {
	Address     domain.Address `json:"address"`
	Whitelisted bool           `json:"whitelisted"`
}

type WhitelistBatchResponse struct {
	Added int `json:"added"`
}

type FinalizationResponse struct {
	GoalReached bool       `json:"goal_reached"`
	TotalRaised string     `json:"total_raised"`
	Forwarded   string     `json:"forwarded"`
	Vault       VaultState `json:"vault_state"`
	FinalizedAt time.Time  `json:"finalized_at"`
}

func NewFinalizationResponse(f *Finalization) FinalizationResponse {
	return FinalizationResponse{
		GoalReached: f.GoalReached,
		TotalRaised: f.TotalRaised.Dec(),
		Forwarded:   f.Forwarded.Dec(),
		Vault:       f.Vault,
		FinalizedAt: f.At,
	}
}

type OwnerResponse struct {
	Owner domain.Address `json:"owner"`
}

type RefundResponse struct {
	Payer  domain.Address `json:"payer"`
	Amount string         `json:"amount"`
}

type ContributionResponse struct {
	Address   domain.Address `json:"address"`
	Deposited string         `json:"deposited"`
	Private   string         `json:"private"`
	Refunded  string         `json:"refunded"`
}

func NewContributionResponse(c *Contribution) ContributionResponse {
	return ContributionResponse{
		Address:   c.Address,
		Deposited: c.Deposited.Dec(),
		Private:   c.Private.Dec(),
		Refunded:  c.Refunded.Dec(),
	}
}

type StatusResponse struct {
	Rate        string         `json:"rate"`
	InitialRate string         `json:"initial_rate"`
	WeiRaised   string         `json:"wei_raised"`
	EtherRaised string         `json:"ether_raised"`
	Escrow      string         `json:"escrow"`
	HardCap     string         `json:"hard_cap"`
	SoftGoal    string         `json:"soft_goal"`
	Minimum     string         `json:"minimum_contribution"`
	CapReached  bool           `json:"cap_reached"`
	GoalReached bool           `json:"goal_reached"`
	IsOpen      bool           `json:"is_open"`
	HasClosed   bool           `json:"has_closed"`
	Finalized   bool           `json:"finalized"`
	Vault       VaultState     `json:"vault_state"`
	OpeningTime time.Time      `json:"opening_time"`
	ClosingTime time.Time      `json:"closing_time"`
	Wallet      domain.Address `json:"wallet"`
	Controller  domain.Address `json:"controller"`
	TotalSupply string         `json:"total_supply"`
	MaxSupply   string         `json:"max_supply"`
}

func NewStatusResponse(s *Status) StatusResponse {
	return StatusResponse{
		Rate:        s.Rate.Dec(),
		InitialRate: s.InitialRate.Dec(),
		WeiRaised:   s.WeiRaised.Dec(),
		EtherRaised: domain.FormatUnits(s.WeiRaised, domain.EtherDecimals),
		Escrow:      s.Escrow.Dec(),
		HardCap:     s.HardCap.Dec(),
		SoftGoal:    s.SoftGoal.Dec(),
		Minimum:     s.Minimum.Dec(),
		CapReached:  s.CapReached,
		GoalReached: s.GoalReached,
		IsOpen:      s.IsOpen,
		HasClosed:   s.HasClosed,
		Finalized:   s.Finalized,
		Vault:       s.Vault,
		OpeningTime: s.Window.Opening,
		ClosingTime: s.Window.Closing,
		Wallet:      s.Wallet,
		Controller:  s.Controller,
		TotalSupply: s.TotalSupply.Dec(),
		MaxSupply:   s.MaxSupply.Dec(),
	}
}

type TokenSupplyResponse struct {
	TotalSupply string `json:"total_supply"`
	MaxSupply   string `json:"max_supply"`
	Decimals    int32  `json:"decimals"`
}

type TokenBalanceResponse struct {
	Address domain.Address `json:"address"`
	Balance string         `json:"balance"`
}
