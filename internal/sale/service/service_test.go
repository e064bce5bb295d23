package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"crowdsale/internal/balances"
	"crowdsale/internal/payments"
	"crowdsale/internal/sale/metrics"
	"crowdsale/internal/sale/mocks"
	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/store/ledger"
	"crowdsale/internal/sale/store/whitelist"
	"crowdsale/internal/token"
	"crowdsale/pkg/domain"
	dErrors "crowdsale/pkg/domain-errors"
	"crowdsale/pkg/platform/audit"
	"crowdsale/pkg/platform/audit/publisher"
	auditmemory "crowdsale/pkg/platform/audit/store/memory"
	"crowdsale/pkg/requestcontext"
)

// =============================================================================
// Sale Service Test Suite
// =============================================================================

var (
	controller = domain.MustParseAddress("0x1000000000000000000000000000000000000001")
	wallet     = domain.MustParseAddress("0x2000000000000000000000000000000000000002")
	saleAddr   = domain.MustParseAddress("0x3000000000000000000000000000000000000003")
	investor   = domain.MustParseAddress("0xa000000000000000000000000000000000000001")
	purchaser  = domain.MustParseAddress("0xb000000000000000000000000000000000000002")
	stranger   = domain.MustParseAddress("0xc000000000000000000000000000000000000003")

	opening = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	closing = opening.Add(3 * time.Minute)
)

func ether(n uint64) *uint256.Int {
	return domain.Ether(n)
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	cfg       models.Config
	maxSupply *uint256.Int
	balances  *balances.InMemoryStore
	ledger    *ledger.InMemoryStore
	whitelist *whitelist.InMemoryStore
	token     *token.Ledger
	payments  *payments.Transferor
	audit     *publisher.Publisher
	metrics   *metrics.Metrics
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = models.Config{
		Self:                saleAddr,
		Controller:          controller,
		Wallet:              wallet,
		InitialRate:         uint256.NewInt(1),
		HardCap:             ether(5),
		SoftGoal:            ether(3),
		MinimumContribution: ether(1),
		Window:              models.TimeWindow{Opening: opening, Closing: closing},
	}
	s.maxSupply = ether(1000)
	s.build()
}

// build wires the service from s.cfg and s.maxSupply over fresh stores.
func (s *ServiceSuite) build() {
	s.balances = balances.NewInMemoryStore()
	s.ledger = ledger.NewInMemory()
	s.whitelist = whitelist.NewInMemory()

	var err error
	s.token, err = token.New(s.ctx, s.balances, controller, s.maxSupply, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.token.TransferOwnership(controller, saleAddr))

	s.payments, err = payments.New(s.balances)
	s.Require().NoError(err)

	s.audit = publisher.NewPublisher(auditmemory.NewInMemoryStore())
	s.metrics = metrics.New(prometheus.NewRegistry())

	s.service, err = New(s.ctx, s.cfg, Collaborators{
		Ledger:    s.ledger,
		Whitelist: s.whitelist,
		Asset:     s.token,
		Payments:  s.payments,
	}, WithAuditPublisher(s.audit), WithMetrics(s.metrics))
	s.Require().NoError(err)
}

func (s *ServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(s.ctx, t)
}

func (s *ServiceSuite) during() context.Context {
	return s.at(opening.Add(time.Minute))
}

func (s *ServiceSuite) afterClose() context.Context {
	return s.at(closing.Add(time.Second))
}

func (s *ServiceSuite) whitelisted(addrs ...domain.Address) {
	_, err := s.service.AddManyToWhitelist(s.during(), controller, addrs)
	s.Require().NoError(err)
}

func (s *ServiceSuite) buy(payer, beneficiary domain.Address, value *uint256.Int) {
	_, err := s.service.BuyTokens(s.during(), payer, beneficiary, value)
	s.Require().NoError(err)
}

func (s *ServiceSuite) raised() *uint256.Int {
	v, err := s.service.WeiRaised(s.ctx)
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) supply() *uint256.Int {
	v, err := s.token.TotalSupply(s.ctx)
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) received(addr domain.Address) *uint256.Int {
	v, err := s.payments.Received(s.ctx, addr)
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) assertUnchanged(raised, supply *uint256.Int) {
	s.Equal(raised, s.raised(), "total raised must not change")
	s.Equal(supply, s.supply(), "token supply must not change")
}

// =============================================================================
// Construction
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("invalid config is rejected", func() {
		cfg := s.cfg
		cfg.SoftGoal = ether(6)
		_, err := New(s.ctx, cfg, Collaborators{Ledger: s.ledger, Whitelist: s.whitelist, Asset: s.token, Payments: s.payments})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing collaborator is rejected", func() {
		_, err := New(s.ctx, s.cfg, Collaborators{Ledger: s.ledger, Whitelist: s.whitelist, Asset: s.token})
		s.Error(err)
	})

	s.Run("existing state is resumed", func() {
		s.whitelisted(investor)
		s.buy(investor, investor, ether(2))

		again, err := New(s.ctx, s.cfg, Collaborators{Ledger: s.ledger, Whitelist: s.whitelist, Asset: s.token, Payments: s.payments})
		s.Require().NoError(err)
		raised, err := again.WeiRaised(s.ctx)
		s.Require().NoError(err)
		s.Equal(ether(2), raised)
	})
}

// =============================================================================
// Public purchases
// =============================================================================

func (s *ServiceSuite) TestBuyTokens() {
	s.whitelisted(investor)

	s.Run("minimum deposit at rate 1 mints one token per wei", func() {
		p, err := s.service.BuyTokens(s.during(), investor, investor, ether(1))
		s.Require().NoError(err)
		s.Equal(ether(1), p.Tokens)
		s.False(p.Private)

		s.Equal(ether(1), s.raised())
		bal, err := s.token.BalanceOf(s.ctx, investor)
		s.Require().NoError(err)
		s.Equal(ether(1), bal)
	})

	s.Run("a purchase at the opening instant is accepted", func() {
		_, err := s.service.BuyTokens(s.at(opening), investor, investor, ether(1))
		s.NoError(err)
	})

	s.Run("purchases outside the window are rejected", func() {
		raised, supply := s.raised(), s.supply()
		for _, ctx := range []context.Context{s.at(opening.Add(-time.Second)), s.at(closing), s.afterClose()} {
			_, err := s.service.BuyTokens(ctx, investor, investor, ether(1))
			s.True(dErrors.HasCode(err, dErrors.CodeSaleNotOpen))
		}
		s.assertUnchanged(raised, supply)
	})

	s.Run("beneficiary must be whitelisted", func() {
		_, err := s.service.BuyTokens(s.during(), investor, stranger, ether(1))
		s.True(dErrors.HasCode(err, dErrors.CodeNotWhitelisted))
	})

	s.Run("beneficiary must be set", func() {
		_, err := s.service.BuyTokens(s.during(), investor, domain.ZeroAddress, ether(1))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidBeneficiary))
	})

	s.Run("anonymous payer is rejected", func() {
		_, err := s.service.BuyTokens(s.during(), domain.ZeroAddress, investor, ether(1))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("values below the minimum are rejected", func() {
		raised, supply := s.raised(), s.supply()
		for _, v := range []*uint256.Int{new(uint256.Int), new(uint256.Int).SubUint64(ether(1), 1), nil} {
			_, err := s.service.BuyTokens(s.during(), investor, investor, v)
			s.True(dErrors.HasCode(err, dErrors.CodeBelowMinimum))
		}
		s.assertUnchanged(raised, supply)
	})
}

func (s *ServiceSuite) TestBuyTokensCredit() {
	s.whitelisted(purchaser)
	s.buy(investor, purchaser, ether(2))

	payerRecord, err := s.service.Contribution(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(ether(2), payerRecord.Deposited, "refund credit belongs to the payer")

	beneficiaryRecord, err := s.service.Contribution(s.ctx, purchaser)
	s.Require().NoError(err)
	s.True(beneficiaryRecord.Deposited.IsZero())

	bal, err := s.token.BalanceOf(s.ctx, purchaser)
	s.Require().NoError(err)
	s.Equal(ether(2), bal, "tokens go to the beneficiary")

	status, err := s.service.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(ether(2), status.Escrow)
}

func (s *ServiceSuite) TestHardCap() {
	s.whitelisted(investor)

	s.buy(investor, investor, ether(3))
	s.Equal(ether(3), s.raised())

	supply := s.supply()
	_, err := s.service.BuyTokens(s.during(), investor, investor, ether(3))
	s.True(dErrors.HasCode(err, dErrors.CodeCapExceeded))
	s.assertUnchanged(ether(3), supply)

	s.buy(investor, investor, ether(2))
	reached, err := s.service.CapReached(s.ctx)
	s.Require().NoError(err)
	s.True(reached)

	_, err = s.service.BuyTokens(s.during(), investor, investor, ether(1))
	s.True(dErrors.HasCode(err, dErrors.CodeCapExceeded))
}

func (s *ServiceSuite) TestSupplyCap() {
	s.maxSupply = ether(1500)
	s.cfg.InitialRate = uint256.NewInt(1000)
	s.build()
	s.whitelisted(investor)

	s.buy(investor, investor, ether(1))
	s.Equal(ether(1000), s.supply())

	_, err := s.service.BuyTokens(s.during(), investor, investor, ether(1))
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExceeded))
	s.assertUnchanged(ether(1), ether(1000))

	record, err := s.service.Contribution(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(ether(1), record.Deposited)
}

func (s *ServiceSuite) TestPurchaseUsesCurrentRate() {
	s.whitelisted(investor)
	s.Require().NoError(s.service.ChangeRate(s.during(), controller, uint256.NewInt(3)))

	p, err := s.service.BuyTokens(s.during(), investor, investor, ether(1))
	s.Require().NoError(err)
	s.Equal(ether(3), p.Tokens)
}

// =============================================================================
// Private investments
// =============================================================================

func (s *ServiceSuite) TestPushPrivateInvestment() {
	s.Run("only the controller may record", func() {
		_, err := s.service.PushPrivateInvestment(s.during(), stranger, ether(1), ether(10), investor)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("beneficiary must be set", func() {
		_, err := s.service.PushPrivateInvestment(s.during(), controller, ether(1), ether(10), domain.ZeroAddress)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidBeneficiary))
	})

	s.Run("accepted before opening with negotiated token amount", func() {
		p, err := s.service.PushPrivateInvestment(s.at(opening.Add(-time.Hour)), controller, ether(1), ether(42), investor)
		s.Require().NoError(err)
		s.True(p.Private)
		s.Equal(controller, p.Payer)
		s.Equal(ether(42), p.Tokens)

		s.Equal(ether(1), s.raised())
		s.Equal(ether(42), s.supply())

		listed, err := s.service.IsWhitelisted(s.ctx, investor)
		s.Require().NoError(err)
		s.True(listed, "beneficiary is admitted to the whitelist")

		record, err := s.service.Contribution(s.ctx, investor)
		s.Require().NoError(err)
		s.Equal(ether(1), record.Private)
		s.True(record.Deposited.IsZero())

		status, err := s.service.Status(s.ctx)
		s.Require().NoError(err)
		s.True(status.Escrow.IsZero(), "private value never enters escrow")
	})

	s.Run("accepted at the closing instant", func() {
		_, err := s.service.PushPrivateInvestment(s.at(closing), controller, ether(1), ether(1), investor)
		s.NoError(err)
	})

	s.Run("rejected after closing", func() {
		_, err := s.service.PushPrivateInvestment(s.at(closing.Add(time.Nanosecond)), controller, ether(1), ether(1), investor)
		s.True(dErrors.HasCode(err, dErrors.CodeSaleClosed))
	})

	s.Run("minimum applies", func() {
		_, err := s.service.PushPrivateInvestment(s.during(), controller, uint256.NewInt(1), ether(1), investor)
		s.True(dErrors.HasCode(err, dErrors.CodeBelowMinimum))
	})
}

func (s *ServiceSuite) TestPrivateInvestmentAtCap() {
	_, err := s.service.PushPrivateInvestment(s.during(), controller, ether(5), ether(5), investor)
	s.Require().NoError(err)

	reached, err := s.service.CapReached(s.ctx)
	s.Require().NoError(err)
	s.True(reached)

	_, err = s.service.PushPrivateInvestment(s.during(), controller, ether(1), ether(1), investor)
	s.True(dErrors.HasCode(err, dErrors.CodeCapExceeded))
	s.assertUnchanged(ether(5), ether(5))

	_, err = s.service.Finalize(s.afterClose(), controller)
	s.Require().NoError(err)
	reached, err = s.service.CapReached(s.ctx)
	s.Require().NoError(err)
	s.True(reached)

	_, err = s.service.PushPrivateInvestment(s.at(closing), controller, ether(1), ether(1), investor)
	s.True(dErrors.HasCode(err, dErrors.CodeSaleFinalized))
}

func (s *ServiceSuite) TestPrivateInvestmentSupplyCap() {
	_, err := s.service.PushPrivateInvestment(s.during(), controller, ether(1), new(uint256.Int).AddUint64(s.maxSupply, 1), investor)
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExceeded))
	s.assertUnchanged(new(uint256.Int), new(uint256.Int))

	listed, err := s.service.IsWhitelisted(s.ctx, investor)
	s.Require().NoError(err)
	s.False(listed, "a rejected investment admits nobody")
}

// =============================================================================
// Rate
// =============================================================================

func (s *ServiceSuite) TestChangeRate() {
	s.cfg.InitialRate = uint256.NewInt(1000)
	s.build()

	s.Run("only the controller may change the rate", func() {
		err := s.service.ChangeRate(s.during(), stranger, uint256.NewInt(2000))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rate below the initial rate is rejected", func() {
		err := s.service.ChangeRate(s.during(), controller, uint256.NewInt(999))
		s.True(dErrors.HasCode(err, dErrors.CodeRateBelowFloor))
	})

	s.Run("raised rate may be lowered to the initial rate but not below", func() {
		s.Require().NoError(s.service.ChangeRate(s.during(), controller, uint256.NewInt(1500)))
		s.Require().NoError(s.service.ChangeRate(s.during(), controller, uint256.NewInt(1200)))

		err := s.service.ChangeRate(s.during(), controller, uint256.NewInt(900))
		s.True(dErrors.HasCode(err, dErrors.CodeRateBelowFloor))

		s.Require().NoError(s.service.ChangeRate(s.during(), controller, uint256.NewInt(1000)))
		rate, err := s.service.Rate(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1000), rate.Uint64())

		initial, err := s.service.InitialRate(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1000), initial.Uint64())
	})

	s.Run("allowed before opening", func() {
		s.NoError(s.service.ChangeRate(s.at(opening.Add(-time.Hour)), controller, uint256.NewInt(1100)))
	})

	s.Run("rejected once closed", func() {
		err := s.service.ChangeRate(s.at(closing), controller, uint256.NewInt(2000))
		s.True(dErrors.HasCode(err, dErrors.CodeSaleClosed))
	})

	s.Run("missing rate is below the floor", func() {
		err := s.service.ChangeRate(s.during(), controller, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeRateBelowFloor))
	})
}

// =============================================================================
// Whitelist
// =============================================================================

func (s *ServiceSuite) TestWhitelist() {
	s.Run("only the controller may edit", func() {
		s.True(dErrors.HasCode(s.service.AddToWhitelist(s.ctx, stranger, investor), dErrors.CodeUnauthorized))
		_, err := s.service.AddManyToWhitelist(s.ctx, stranger, []domain.Address{investor})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(s.service.RemoveFromWhitelist(s.ctx, stranger, investor), dErrors.CodeUnauthorized))
	})

	s.Run("batch add reports new members", func() {
		s.Require().NoError(s.service.AddToWhitelist(s.ctx, controller, investor))
		added, err := s.service.AddManyToWhitelist(s.ctx, controller, []domain.Address{investor, purchaser, purchaser})
		s.Require().NoError(err)
		s.Equal(1, added)
	})

	s.Run("batch with the zero address admits nobody", func() {
		_, err := s.service.AddManyToWhitelist(s.ctx, controller, []domain.Address{stranger, domain.ZeroAddress})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		listed, err := s.service.IsWhitelisted(s.ctx, stranger)
		s.Require().NoError(err)
		s.False(listed)
	})

	s.Run("remove is idempotent", func() {
		s.Require().NoError(s.service.RemoveFromWhitelist(s.ctx, controller, investor))
		s.Require().NoError(s.service.RemoveFromWhitelist(s.ctx, controller, investor))
		listed, err := s.service.IsWhitelisted(s.ctx, investor)
		s.Require().NoError(err)
		s.False(listed)
	})

	s.Run("removed beneficiaries cannot buy", func() {
		_, err := s.service.BuyTokens(s.during(), purchaser, investor, ether(1))
		s.True(dErrors.HasCode(err, dErrors.CodeNotWhitelisted))
	})

	s.Run("edits stop at finalization", func() {
		_, err := s.service.Finalize(s.afterClose(), controller)
		s.Require().NoError(err)
		s.True(dErrors.HasCode(s.service.AddToWhitelist(s.ctx, controller, investor), dErrors.CodeSaleFinalized))
	})
}

// =============================================================================
// Finalization and refunds
// =============================================================================

func (s *ServiceSuite) TestFinalizeGuards() {
	_, err := s.service.Finalize(s.afterClose(), stranger)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Finalize(s.during(), controller)
	s.True(dErrors.HasCode(err, dErrors.CodeTooEarly))

	_, err = s.service.Finalize(s.afterClose(), controller)
	s.Require().NoError(err)

	_, err = s.service.Finalize(s.afterClose(), controller)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFinalized))
}

func (s *ServiceSuite) TestGoalReachedForwardsEscrow() {
	s.whitelisted(investor, purchaser)
	s.buy(investor, investor, ether(2))
	s.buy(purchaser, purchaser, ether(2))

	live, err := s.service.GoalReached(s.ctx)
	s.Require().NoError(err)
	s.True(live, "goal is live before finalization")

	result, err := s.service.Finalize(s.afterClose(), controller)
	s.Require().NoError(err)
	s.True(result.GoalReached)
	s.Equal(models.VaultClosed, result.Vault)
	s.Equal(ether(4), result.Forwarded)
	s.Equal(ether(4), s.received(wallet))

	status, err := s.service.Status(s.ctx)
	s.Require().NoError(err)
	s.True(status.Escrow.IsZero())
	s.True(status.Finalized)

	_, err = s.service.ClaimRefund(s.ctx, investor)
	s.True(dErrors.HasCode(err, dErrors.CodeGoalWasReached))
}

func (s *ServiceSuite) TestGoalMissedOpensRefunds() {
	s.whitelisted(investor)

	_, err := s.service.ClaimRefund(s.ctx, investor)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFinalized))

	s.buy(investor, investor, ether(2))

	result, err := s.service.Finalize(s.afterClose(), controller)
	s.Require().NoError(err)
	s.False(result.GoalReached)
	s.Equal(models.VaultRefunding, result.Vault)
	s.True(result.Forwarded.IsZero())
	s.True(s.received(wallet).IsZero())

	reached, err := s.service.GoalReached(s.ctx)
	s.Require().NoError(err)
	s.False(reached)

	refund, err := s.service.ClaimRefund(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(ether(2), refund.Amount)
	s.Equal(ether(2), s.received(investor))

	record, err := s.service.Contribution(s.ctx, investor)
	s.Require().NoError(err)
	s.True(record.Deposited.IsZero())
	s.Equal(ether(2), record.Refunded)

	again, err := s.service.ClaimRefund(s.ctx, investor)
	s.Require().NoError(err)
	s.True(again.Amount.IsZero(), "a second claim returns nothing")
	s.Equal(ether(2), s.received(investor))

	status, err := s.service.Status(s.ctx)
	s.Require().NoError(err)
	s.True(status.Escrow.IsZero())
	s.Equal(ether(2), status.WeiRaised, "total raised is not reduced by refunds")
}

func (s *ServiceSuite) TestPrivateInvestmentRefundsNothing() {
	_, err := s.service.PushPrivateInvestment(s.during(), controller, ether(1), ether(1), investor)
	s.Require().NoError(err)
	_, err = s.service.Finalize(s.afterClose(), controller)
	s.Require().NoError(err)

	refund, err := s.service.ClaimRefund(s.ctx, investor)
	s.Require().NoError(err)
	s.True(refund.Amount.IsZero())
}

func (s *ServiceSuite) TestPrivateInvestmentCountsTowardGoal() {
	s.whitelisted(purchaser)
	_, err := s.service.PushPrivateInvestment(s.during(), controller, ether(2), ether(2), investor)
	s.Require().NoError(err)
	s.buy(purchaser, purchaser, ether(1))

	result, err := s.service.Finalize(s.afterClose(), controller)
	s.Require().NoError(err)
	s.True(result.GoalReached)
	s.Equal(ether(1), result.Forwarded, "only escrowed value is forwarded")
}

// =============================================================================
// Ownership
// =============================================================================

func (s *ServiceSuite) TestTransferOwnership() {
	err := s.service.TransferOwnership(s.ctx, stranger, stranger)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Require().NoError(s.service.TransferOwnership(s.ctx, controller, purchaser))
	s.Equal(purchaser, s.service.Owner())

	err = s.service.ChangeRate(s.during(), controller, uint256.NewInt(2))
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.NoError(s.service.ChangeRate(s.during(), purchaser, uint256.NewInt(2)))
}

// =============================================================================
// Notifications and metrics
// =============================================================================

func (s *ServiceSuite) TestPurchaseNotification() {
	s.whitelisted(purchaser)
	s.buy(investor, purchaser, ether(2))

	events, err := s.audit.List(s.ctx, purchaser.String())
	s.Require().NoError(err)

	var found *audit.Event
	for i := range events {
		if events[i].Action == string(audit.EventPurchase) {
			found = &events[i]
		}
	}
	s.Require().NotNil(found)
	s.Equal(investor.String(), found.Payer)
	s.Equal(ether(2).Dec(), found.Value)
	s.Equal(ether(2).Dec(), found.Tokens)
	s.Equal(audit.CategoryFinancial, found.Category)
}

func (s *ServiceSuite) TestRejectionsAreCounted() {
	_, err := s.service.BuyTokens(s.during(), investor, investor, ether(1))
	s.Require().Error(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues(opPurchase, string(dErrors.CodeNotWhitelisted))))

	events, err := s.audit.List(s.ctx, investor.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventContributionRejected), events[0].Action)
	s.Equal(string(dErrors.CodeNotWhitelisted), events[0].Detail)
}

// =============================================================================
// Collaborator failures
// =============================================================================

type FailureSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	ledger    *ledger.InMemoryStore
	whitelist *mocks.MockWhitelistStore
	asset     *mocks.MockAssetLedger
	payments  *mocks.MockPayments
	service   *Service
}

func TestFailureSuite(t *testing.T) {
	suite.Run(t, new(FailureSuite))
}

func (s *FailureSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), opening.Add(time.Minute))
	s.ctrl = gomock.NewController(s.T())
	s.ledger = ledger.NewInMemory()
	s.whitelist = mocks.NewMockWhitelistStore(s.ctrl)
	s.asset = mocks.NewMockAssetLedger(s.ctrl)
	s.payments = mocks.NewMockPayments(s.ctrl)

	s.asset.EXPECT().TotalSupply(gomock.Any()).Return(new(uint256.Int), nil).AnyTimes()
	s.asset.EXPECT().MaxSupply().Return(ether(1000)).AnyTimes()

	var err error
	s.service, err = New(s.ctx, models.Config{
		Self:                saleAddr,
		Controller:          controller,
		Wallet:              wallet,
		InitialRate:         uint256.NewInt(1),
		HardCap:             ether(5),
		SoftGoal:            ether(3),
		MinimumContribution: ether(1),
		Window:              models.TimeWindow{Opening: opening, Closing: closing},
	}, Collaborators{Ledger: s.ledger, Whitelist: s.whitelist, Asset: s.asset, Payments: s.payments})
	s.Require().NoError(err)
}

func (s *FailureSuite) state() *models.State {
	st, err := s.ledger.LoadState(s.ctx)
	s.Require().NoError(err)
	return st
}

func (s *FailureSuite) TestMintFailureRollsBackPurchase() {
	s.whitelist.EXPECT().Contains(gomock.Any(), investor).Return(true, nil)
	s.asset.EXPECT().Mint(gomock.Any(), saleAddr, investor, ether(1)).Return(errors.New("ledger unavailable"))

	_, err := s.service.BuyTokens(s.ctx, investor, investor, ether(1))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	st := s.state()
	s.True(st.TotalRaised.IsZero())
	s.True(st.Escrow.IsZero())
	record, err := s.ledger.Contribution(s.ctx, investor)
	s.Require().NoError(err)
	s.True(record.Deposited.IsZero())
}

func (s *FailureSuite) TestSupplyRejectionFromLedgerPassesThrough() {
	s.whitelist.EXPECT().Contains(gomock.Any(), investor).Return(true, nil)
	s.asset.EXPECT().Mint(gomock.Any(), saleAddr, investor, ether(1)).
		Return(dErrors.New(dErrors.CodeSupplyExceeded, "mint would exceed max supply"))

	_, err := s.service.BuyTokens(s.ctx, investor, investor, ether(1))
	s.True(dErrors.HasCode(err, dErrors.CodeSupplyExceeded))
	s.True(s.state().TotalRaised.IsZero())
}

func (s *FailureSuite) TestWhitelistOutageIsInternal() {
	s.whitelist.EXPECT().Contains(gomock.Any(), investor).Return(false, errors.New("redis down"))

	_, err := s.service.BuyTokens(s.ctx, investor, investor, ether(1))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *FailureSuite) TestFailedPrivateInvestmentRevokesAdmission() {
	gomock.InOrder(
		s.whitelist.EXPECT().Add(gomock.Any(), investor).Return(1, nil),
		s.whitelist.EXPECT().Remove(gomock.Any(), investor).Return(nil),
	)
	s.asset.EXPECT().Mint(gomock.Any(), saleAddr, investor, ether(10)).Return(errors.New("ledger unavailable"))

	_, err := s.service.PushPrivateInvestment(s.ctx, controller, ether(1), ether(10), investor)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.True(s.state().TotalRaised.IsZero())
}

func (s *FailureSuite) TestFailedPrivateInvestmentKeepsPriorMember() {
	s.whitelist.EXPECT().Add(gomock.Any(), investor).Return(0, nil)
	s.asset.EXPECT().Mint(gomock.Any(), saleAddr, investor, ether(10)).Return(errors.New("ledger unavailable"))

	_, err := s.service.PushPrivateInvestment(s.ctx, controller, ether(1), ether(10), investor)
	s.Error(err)
}

func (s *FailureSuite) TestTransferFailureKeepsRefundClaimable() {
	s.whitelist.EXPECT().Contains(gomock.Any(), investor).Return(true, nil)
	s.asset.EXPECT().Mint(gomock.Any(), saleAddr, investor, ether(2)).Return(nil)
	_, err := s.service.BuyTokens(s.ctx, investor, investor, ether(2))
	s.Require().NoError(err)

	after := requestcontext.WithTime(context.Background(), closing.Add(time.Second))
	_, err = s.service.Finalize(after, controller)
	s.Require().NoError(err)

	s.payments.EXPECT().Transfer(gomock.Any(), investor, ether(2)).Return(errors.New("payee unreachable"))
	_, err = s.service.ClaimRefund(after, investor)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	record, err := s.ledger.Contribution(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(ether(2), record.Deposited)
	s.Equal(ether(2), s.state().Escrow)

	s.payments.EXPECT().Transfer(gomock.Any(), investor, ether(2)).Return(nil)
	refund, err := s.service.ClaimRefund(after, investor)
	s.Require().NoError(err)
	s.Equal(ether(2), refund.Amount)
}

func (s *FailureSuite) TestForwardFailureLeavesSaleOpenForRetry() {
	s.whitelist.EXPECT().Contains(gomock.Any(), investor).Return(true, nil)
	s.asset.EXPECT().Mint(gomock.Any(), saleAddr, investor, ether(3)).Return(nil)
	_, err := s.service.BuyTokens(s.ctx, investor, investor, ether(3))
	s.Require().NoError(err)

	after := requestcontext.WithTime(context.Background(), closing.Add(time.Second))
	s.payments.EXPECT().Transfer(gomock.Any(), wallet, ether(3)).Return(errors.New("wallet unreachable"))

	_, err = s.service.Finalize(after, controller)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.False(s.state().IsFinalized())
}
