//go:build integration

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	"crowdsale/internal/balances"
	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/sentinel"
	"crowdsale/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	ctx      context.Context
	pg       *containers.PostgresContainer
	store    *PostgresStore
	balances *balances.PostgresStore
}

func TestPostgresLedgerSuite(t *testing.T) {
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.balances = balances.NewPostgres(s.pg.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *PostgresLedgerSuite) TestStateRoundTrip() {
	_, err := s.store.LoadState(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(1000))))
	s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(1))), "second init is a no-op")

	st, err := s.store.LoadState(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1000), st.Rate.Uint64())
	s.Equal(models.VaultActive, st.Vault)

	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	st.TotalRaised = domain.Ether(3)
	st.Vault = models.VaultRefunding
	st.FinalizedAt = &at
	s.Require().NoError(s.store.SaveState(s.ctx, *st))

	got, err := s.store.LoadState(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.Ether(3), got.TotalRaised)
	s.Equal(models.VaultRefunding, got.Vault)
	s.Require().NotNil(got.FinalizedAt)
	s.True(at.Equal(*got.FinalizedAt))
}

func (s *PostgresLedgerSuite) TestRollbackCoversSharedBalances() {
	s.Require().NoError(s.store.Init(s.ctx, models.NewState(uint256.NewInt(1))))
	payer := domain.MustParseAddress("0xa000000000000000000000000000000000000001")
	boom := errors.New("transfer failed")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx ports.LedgerStore) error {
		c, err := tx.Contribution(ctx, payer)
		if err != nil {
			return err
		}
		c.Deposited = domain.Ether(2)
		if err := tx.SaveContribution(ctx, *c); err != nil {
			return err
		}
		if err := s.balances.Credit(ctx, "token", payer, uint256.NewInt(5)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	c, err := s.store.Contribution(s.ctx, payer)
	s.Require().NoError(err)
	s.True(c.Deposited.IsZero())

	bal, err := s.balances.Balance(s.ctx, "token", payer)
	s.Require().NoError(err)
	s.True(bal.IsZero())
}
