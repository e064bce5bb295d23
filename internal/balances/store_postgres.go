package balances

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
	txcontext "crowdsale/pkg/platform/tx"
)

// PostgresStore keeps balances in the balances table. Amounts travel as
// decimal text so NUMERIC(78,0) holds the full 256-bit range.
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

func (s *PostgresStore) Balance(ctx context.Context, book Book, addr domain.Address) (*uint256.Int, error) {
	var raw string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COALESCE((SELECT amount FROM balances WHERE book = $1 AND address = $2), 0)::text`,
		string(book), addr.Hex(),
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return parseNumeric(raw)
}

func (s *PostgresStore) Total(ctx context.Context, book Book) (*uint256.Int, error) {
	var raw string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM balances WHERE book = $1`,
		string(book),
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("read total: %w", err)
	}
	return parseNumeric(raw)
}

func (s *PostgresStore) Credit(ctx context.Context, book Book, addr domain.Address, amount *uint256.Int) error {
	query := `
		INSERT INTO balances (book, address, amount)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (book, address) DO UPDATE SET amount = balances.amount + EXCLUDED.amount
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query, string(book), addr.Hex(), amount.Dec()); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

func parseNumeric(raw string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("parse numeric %q: %w", raw, err)
	}
	return v, nil
}
