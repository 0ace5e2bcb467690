package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores documents in a Postgres table. Bodies use the
// json type rather than jsonb so period labels keep their stored order.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to dsn and migrates the schema.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			body       JSON NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_sector
			ON documents (collection, (body->>'sector'))`,
	}
	for _, stmt := range stmts {
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, c Collection, symbol string) ([]byte, error) {
	var body string
	err := b.pool.QueryRow(ctx,
		`SELECT body::text FROM documents WHERE collection = $1 AND symbol = $2`,
		string(c), symbol,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(c, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s/%s: %w", c, symbol, err)
	}
	return []byte(body), nil
}

func (b *PostgresBackend) Put(ctx context.Context, c Collection, symbol string, doc []byte) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO documents (collection, symbol, body) VALUES ($1, $2, $3::json)
		ON CONFLICT (collection, symbol) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		string(c), symbol, string(doc),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", c, symbol, err)
	}
	return nil
}

func (b *PostgresBackend) Symbols(ctx context.Context, c Collection) ([]string, error) {
	return b.symbols(ctx,
		`SELECT symbol FROM documents WHERE collection = $1 ORDER BY symbol`,
		string(c),
	)
}

func (b *PostgresBackend) SymbolsInSector(ctx context.Context, sector string) ([]string, error) {
	return b.symbols(ctx,
		`SELECT symbol FROM documents
		WHERE collection = $1 AND body->>'sector' = $2
		ORDER BY symbol`,
		string(CollectionBasicInfo), sector,
	)
}

func (b *PostgresBackend) SymbolsByNamePrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	query := `SELECT symbol FROM documents
		WHERE collection = $1 AND lower(body->>'longName') LIKE $2
		ORDER BY symbol`
	args := []any{string(CollectionBasicInfo), likePrefix(prefix)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	return b.symbols(ctx, query, args...)
}

func (b *PostgresBackend) symbols(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
