package statement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores documents in a single SQLite table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path and migrates it.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			body       TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
			PRIMARY KEY (collection, symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_sector
			ON documents(collection, json_extract(body, '$.sector'))`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, c Collection, symbol string) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND symbol = ?`,
		string(c), symbol,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(c, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s/%s: %w", c, symbol, err)
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Put(ctx context.Context, c Collection, symbol string, doc []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO documents (collection, symbol, body) VALUES (?, ?, ?)
		ON CONFLICT(collection, symbol) DO UPDATE SET body = excluded.body, updated_at = unixepoch()`,
		string(c), symbol, string(doc),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", c, symbol, err)
	}
	return nil
}

func (b *SQLiteBackend) Symbols(ctx context.Context, c Collection) ([]string, error) {
	return b.symbols(ctx,
		`SELECT symbol FROM documents WHERE collection = ? ORDER BY symbol`,
		string(c),
	)
}

func (b *SQLiteBackend) SymbolsInSector(ctx context.Context, sector string) ([]string, error) {
	return b.symbols(ctx,
		`SELECT symbol FROM documents
		WHERE collection = ? AND json_extract(body, '$.sector') = ?
		ORDER BY symbol`,
		string(CollectionBasicInfo), sector,
	)
}

func (b *SQLiteBackend) SymbolsByNamePrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	query := `SELECT symbol FROM documents
		WHERE collection = ? AND lower(json_extract(body, '$.longName')) LIKE ? ESCAPE '\'
		ORDER BY symbol`
	args := []any{string(CollectionBasicInfo), likePrefix(prefix)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return b.symbols(ctx, query, args...)
}

func (b *SQLiteBackend) symbols(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// likePrefix turns a user term into a lower-cased LIKE prefix pattern
// with the wildcard characters escaped.
func likePrefix(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.ToLower(term)) + "%"
}
