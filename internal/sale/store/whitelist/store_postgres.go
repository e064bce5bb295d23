package whitelist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"crowdsale/pkg/domain"
	txcontext "crowdsale/pkg/platform/tx"
)

// PostgresStore persists the whitelist in sale_whitelist. Writes join a
// transaction carried in ctx.
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

// Add inserts every address in one statement, so a batch lands whole or not at all.
func (s *PostgresStore) Add(ctx context.Context, addrs ...domain.Address) (int, error) {
	if len(addrs) == 0 {
		return 0, nil
	}
	hexes := make([]string, len(addrs))
	for i, addr := range addrs {
		hexes[i] = addr.Hex()
	}
	query := `
		INSERT INTO sale_whitelist (address)
		SELECT DISTINCT unnest($1::text[])
		ON CONFLICT (address) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, pq.Array(hexes))
	if err != nil {
		return 0, fmt.Errorf("add to whitelist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("add to whitelist: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) Remove(ctx context.Context, addr domain.Address) error {
	if _, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM sale_whitelist WHERE address = $1`, addr.Hex()); err != nil {
		return fmt.Errorf("remove from whitelist: %w", err)
	}
	return nil
}

func (s *PostgresStore) Contains(ctx context.Context, addr domain.Address) (bool, error) {
	var ok bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sale_whitelist WHERE address = $1)`, addr.Hex(),
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check whitelist: %w", err)
	}
	return ok, nil
}
