package statement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/finratio/internal/core"
)

// Store implements Repository over any Backend.
type Store struct {
	backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend returns the underlying document backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) Statement(ctx context.Context, kind core.StatementKind, symbol string) (core.Statement, error) {
	c, err := CollectionFor(kind)
	if err != nil {
		return nil, err
	}
	doc, err := s.backend.Get(ctx, c, symbol)
	if err != nil {
		return nil, err
	}
	var st core.Statement
	if err := json.Unmarshal(doc, &st); err != nil {
		return nil, fmt.Errorf("decoding %s for %s: %w", c, symbol, err)
	}
	return st, nil
}

func (s *Store) Beta(ctx context.Context, symbol string) (*core.BetaRecord, error) {
	doc, err := s.backend.Get(ctx, CollectionBeta, symbol)
	if err != nil {
		return nil, err
	}
	var b core.BetaRecord
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("decoding beta for %s: %w", symbol, err)
	}
	if b.Ticker == "" {
		b.Ticker = symbol
	}
	return &b, nil
}

func (s *Store) BasicInfo(ctx context.Context, symbol string) (*core.BasicInfo, error) {
	doc, err := s.backend.Get(ctx, CollectionBasicInfo, symbol)
	if err != nil {
		return nil, err
	}
	var info core.BasicInfo
	if err := json.Unmarshal(doc, &info); err != nil {
		return nil, fmt.Errorf("decoding basic info for %s: %w", symbol, err)
	}
	if info.Symbol == "" {
		info.Symbol = symbol
	}
	return &info, nil
}

func (s *Store) Peers(ctx context.Context, sector string) ([]string, error) {
	if idx, ok := s.backend.(SectorIndex); ok {
		return idx.SymbolsInSector(ctx, sector)
	}

	var peers []string
	err := s.scan(ctx, func(info *core.BasicInfo) bool {
		if info.Sector == sector {
			peers = append(peers, info.Symbol)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(peers)
	return peers, nil
}

func (s *Store) Search(ctx context.Context, term string, limit int) ([]core.BasicInfo, error) {
	if idx, ok := s.backend.(NameIndex); ok {
		symbols, err := idx.SymbolsByNamePrefix(ctx, term, limit)
		if err != nil {
			return nil, err
		}
		out := make([]core.BasicInfo, 0, len(symbols))
		for _, sym := range symbols {
			info, err := s.BasicInfo(ctx, sym)
			if err != nil {
				return nil, err
			}
			out = append(out, summary(info))
		}
		return out, nil
	}

	prefix := strings.ToLower(term)
	var out []core.BasicInfo
	err := s.scan(ctx, func(info *core.BasicInfo) bool {
		if strings.HasPrefix(strings.ToLower(info.LongName), prefix) {
			out = append(out, summary(info))
		}
		return limit <= 0 || len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put validates doc as a JSON object and stores it.
func (s *Store) Put(ctx context.Context, c Collection, symbol string, doc []byte) error {
	if err := validateDocument(c, symbol, doc); err != nil {
		return err
	}
	return s.backend.Put(ctx, c, symbol, doc)
}

// scan visits directory records in symbol order until fn returns false.
func (s *Store) scan(ctx context.Context, fn func(*core.BasicInfo) bool) error {
	symbols, err := s.backend.Symbols(ctx, CollectionBasicInfo)
	if err != nil {
		return err
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		info, err := s.BasicInfo(ctx, sym)
		if err != nil {
			return err
		}
		if !fn(info) {
			return nil
		}
	}
	return nil
}

// summary keeps the fields a search result exposes.
func summary(info *core.BasicInfo) core.BasicInfo {
	return core.BasicInfo{Symbol: info.Symbol, LongName: info.LongName, Sector: info.Sector}
}

func validateDocument(c Collection, symbol string, doc []byte) error {
	if !c.Valid() {
		return fmt.Errorf("unknown collection: %q", c)
	}
	if symbol == "" {
		return core.ErrMissingSymbol
	}
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("%s/%s: document is not a JSON object", c, symbol)
	}
	if kind, ok := statementKind(c); ok {
		var st core.Statement
		if err := json.Unmarshal(trimmed, &st); err != nil {
			return core.WrapError(core.ErrInvalidInput, fmt.Errorf("%s/%s: invalid %s statement: %w", c, symbol, kind, err))
		}
	}
	return nil
}
