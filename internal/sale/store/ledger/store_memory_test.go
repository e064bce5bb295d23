package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/sentinel"
)

var payer = domain.MustParseAddress("0xa000000000000000000000000000000000000001")

type InMemoryLedgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func (s *InMemoryLedgerSuite) TestInit() {
	s.Run("load before init is not found", func() {
		_, err := s.store.LoadState(s.ctx)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("init is idempotent", func() {
		s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(1000))))
		s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(5))))

		st, err := s.store.LoadState(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1000), st.Rate.Uint64())
	})
}

func (s *InMemoryLedgerSuite) TestLoadReturnsCopies() {
	s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(1))))

	st, _ := s.store.LoadState(s.ctx)
	st.TotalRaised.SetUint64(99)

	again, _ := s.store.LoadState(s.ctx)
	s.True(again.TotalRaised.IsZero())
}

func (s *InMemoryLedgerSuite) TestUnknownContributionIsEmpty() {
	c, err := s.store.Contribution(s.ctx, payer)
	s.Require().NoError(err)
	s.Equal(payer, c.Address)
	s.True(c.Deposited.IsZero())
}

func (s *InMemoryLedgerSuite) TestRunInTx() {
	s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(1))))

	s.Run("commit publishes every write", func() {
		err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.LedgerStore) error {
			st, err := tx.LoadState(ctx)
			if err != nil {
				return err
			}
			st.TotalRaised.SetUint64(3)
			if err := tx.SaveState(ctx, *st); err != nil {
				return err
			}
			c, _ := tx.Contribution(ctx, payer)
			c.Deposited.SetUint64(3)
			return tx.SaveContribution(ctx, *c)
		})
		s.Require().NoError(err)

		st, _ := s.store.LoadState(s.ctx)
		s.Equal(uint64(3), st.TotalRaised.Uint64())
		c, _ := s.store.Contribution(s.ctx, payer)
		s.Equal(uint64(3), c.Deposited.Uint64())
	})

	s.Run("failure discards every write", func() {
		boom := errors.New("mint failed")
		err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.LedgerStore) error {
			st, _ := tx.LoadState(ctx)
			st.TotalRaised.SetUint64(100)
			_ = tx.SaveState(ctx, *st)
			c, _ := tx.Contribution(ctx, payer)
			c.Deposited.SetUint64(100)
			_ = tx.SaveContribution(ctx, *c)
			return boom
		})
		s.ErrorIs(err, boom)

		st, _ := s.store.LoadState(s.ctx)
		s.Equal(uint64(3), st.TotalRaised.Uint64())
		c, _ := s.store.Contribution(s.ctx, payer)
		s.Equal(uint64(3), c.Deposited.Uint64())
	})
}
