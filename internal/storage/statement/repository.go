// Package statement reads raw company documents (financial statements,
// betas and directory records) from a pluggable document backend.
package statement

import (
	"context"
	"fmt"

	"github.com/newthinker/finratio/internal/core"
)

// Collection names a family of documents keyed by symbol.
type Collection string

const (
	CollectionBalance   Collection = "balanceSheet_data"
	CollectionIncome    Collection = "incomeStatement_data"
	CollectionCashflow  Collection = "cashflow_data"
	CollectionBeta      Collection = "beta_values"
	CollectionBasicInfo Collection = "basic_information"
)

// Collections lists every known collection.
var Collections = []Collection{
	CollectionBalance,
	CollectionIncome,
	CollectionCashflow,
	CollectionBeta,
	CollectionBasicInfo,
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// CollectionFor maps a statement kind to its collection.
func CollectionFor(kind core.StatementKind) (Collection, error) {
	switch kind {
	case core.StatementBalance:
		return CollectionBalance, nil
	case core.StatementIncome:
		return CollectionIncome, nil
	case core.StatementCashflow:
		return CollectionCashflow, nil
	}
	return "", fmt.Errorf("unknown statement kind: %q", kind)
}

// statementKind is the inverse of CollectionFor.
func statementKind(c Collection) (core.StatementKind, bool) {
	switch c {
	case CollectionBalance:
		return core.StatementBalance, true
	case CollectionIncome:
		return core.StatementIncome, true
	case CollectionCashflow:
		return core.StatementCashflow, true
	}
	return "", false
}

// Repository is the read side the computation layer depends on.
type Repository interface {
	// Statement returns one financial statement for symbol.
	Statement(ctx context.Context, kind core.StatementKind, symbol string) (core.Statement, error)

	// Beta returns the beta record for symbol.
	Beta(ctx context.Context, symbol string) (*core.BetaRecord, error)

	// BasicInfo returns the directory record for symbol.
	BasicInfo(ctx context.Context, symbol string) (*core.BasicInfo, error)

	// Peers returns every symbol whose directory record carries sector.
	Peers(ctx context.Context, sector string) ([]string, error)

	// Search returns directory records whose long name starts with term,
	// ignoring case. A limit of zero means no limit.
	Search(ctx context.Context, term string, limit int) ([]core.BasicInfo, error)
}

// Backend stores raw JSON documents. Get returns an error matching
// core.ErrStatementNotFound when the document is absent.
type Backend interface {
	Get(ctx context.Context, c Collection, symbol string) ([]byte, error)
	Put(ctx context.Context, c Collection, symbol string, doc []byte) error
	Symbols(ctx context.Context, c Collection) ([]string, error)
	Close() error
}

// SectorIndex is implemented by backends that can filter directory
// records by sector without a full scan.
type SectorIndex interface {
	SymbolsInSector(ctx context.Context, sector string) ([]string, error)
}

// NameIndex is implemented by backends that can match long-name prefixes
// without a full scan.
type NameIndex interface {
	SymbolsByNamePrefix(ctx context.Context, prefix string, limit int) ([]string, error)
}

func notFound(c Collection, symbol string) error {
	return core.WrapError(core.ErrStatementNotFound, fmt.Errorf("%s: %s", c, symbol))
}
