package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"crowdsale/internal/sale/models"
	"crowdsale/internal/sale/ports"
	"crowdsale/pkg/domain"
	"crowdsale/pkg/platform/sentinel"
	txcontext "crowdsale/pkg/platform/tx"
)

// PostgresStore persists the sale aggregate in sale_state (a single row) and
// sale_contributions. Amounts travel as decimal text.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Init(ctx context.Context, state models.State) error {
	query := `
		INSERT INTO sale_state (id, initial_rate, rate, total_raised, escrow, vault_state, goal_reached, finalized_at)
		VALUES (1, $1::numeric, $2::numeric, $3::numeric, $4::numeric, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		state.InitialRate.Dec(), state.Rate.Dec(), state.TotalRaised.Dec(), state.Escrow.Dec(),
		string(state.Vault), state.GoalReached, state.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("init sale state: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadState(ctx context.Context) (*models.State, error) {
	query := `
		SELECT initial_rate::text, rate::text, total_raised::text, escrow::text, vault_state, goal_reached, finalized_at
		FROM sale_state WHERE id = 1
	`
	var (
		initialRate, rate, raised, escrow, vault string
		goalReached                              bool
		finalizedAt                              sql.NullTime
	)
	err := s.execer(ctx).QueryRowContext(ctx, query).Scan(&initialRate, &rate, &raised, &escrow, &vault, &goalReached, &finalizedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load sale state: %w", err)
	}

	state := models.State{
		Vault:       models.VaultState(vault),
		GoalReached: goalReached,
	}
	if !state.Vault.IsValid() {
		return nil, fmt.Errorf("load sale state: unknown vault state %q: %w", vault, sentinel.ErrInvalidState)
	}
	if state.InitialRate, err = parseNumeric(initialRate); err != nil {
		return nil, err
	}
	if state.Rate, err = parseNumeric(rate); err != nil {
		return nil, err
	}
	if state.TotalRaised, err = parseNumeric(raised); err != nil {
		return nil, err
	}
	if state.Escrow, err = parseNumeric(escrow); err != nil {
		return nil, err
	}
	if finalizedAt.Valid {
		t := finalizedAt.Time.UTC()
		state.FinalizedAt = &t
	}
	return &state, nil
}

func (s *PostgresStore) SaveState(ctx context.Context, state models.State) error {
	query := `
		UPDATE sale_state SET
			rate = $1::numeric,
			total_raised = $2::numeric,
			escrow = $3::numeric,
			vault_state = $4,
			goal_reached = $5,
			finalized_at = $6,
			updated_at = $7
		WHERE id = 1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		state.Rate.Dec(), state.TotalRaised.Dec(), state.Escrow.Dec(),
		string(state.Vault), state.GoalReached, state.FinalizedAt, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save sale state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save sale state: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Contribution(ctx context.Context, addr domain.Address) (*models.Contribution, error) {
	query := `SELECT deposited::text, private::text, refunded::text FROM sale_contributions WHERE address = $1`

	var deposited, private, refunded string
	err := s.execer(ctx).QueryRowContext(ctx, query, addr.Hex()).Scan(&deposited, &private, &refunded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c := models.NewContribution(addr)
			return &c, nil
		}
		return nil, fmt.Errorf("load contribution: %w", err)
	}

	c := models.Contribution{Address: addr}
	if c.Deposited, err = parseNumeric(deposited); err != nil {
		return nil, err
	}
	if c.Private, err = parseNumeric(private); err != nil {
		return nil, err
	}
	if c.Refunded, err = parseNumeric(refunded); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) SaveContribution(ctx context.Context, c models.Contribution) error {
	query := `
		INSERT INTO sale_contributions (address, deposited, private, refunded, updated_at)
		VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5)
		ON CONFLICT (address) DO UPDATE SET
			deposited = EXCLUDED.deposited,
			private = EXCLUDED.private,
			refunded = EXCLUDED.refunded,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		c.Address.Hex(), c.Deposited.Dec(), c.Private.Dec(), c.Refunded.Dec(), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save contribution: %w", err)
	}
	return nil
}

// RunInTx runs fn in a serializable transaction carried in ctx. Stores that
// share the database and read the tx from ctx join it.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.LedgerStore) error) error {
	return txcontext.Run(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(txCtx context.Context) error {
		return fn(txCtx, s)
	})
}

func parseNumeric(raw string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("parse numeric %q: %w", raw, err)
	}
	return v, nil
}
