package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// StatementKind identifies one of the raw financial statements.
type StatementKind string

const (
	StatementBalance  StatementKind = "balance"
	StatementIncome   StatementKind = "income"
	StatementCashflow StatementKind = "cashflow"
)

// Valid reports whether k is a known statement kind.
func (k StatementKind) Valid() bool {
	switch k {
	case StatementBalance, StatementIncome, StatementCashflow:
		return true
	}
	return false
}

// Statement maps line-item names to their period series.
type Statement map[string]*TimeSeries

// Item returns the named line item, nil when absent.
func (s Statement) Item(name string) *TimeSeries {
	if s == nil {
		return nil
	}
	return s[name]
}

// UnmarshalJSON decodes a raw statement document. Scalar fields (symbol
// and similar) and the document id are dropped. Every other object is a
// line item and must decode as a label -> number|null series.
func (s *Statement) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Statement, len(raw))
	for name, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if name == "_id" || len(msg) == 0 || msg[0] != '{' {
			continue
		}
		ts := &TimeSeries{}
		if err := ts.UnmarshalJSON(msg); err != nil {
			return fmt.Errorf("line item %q: %w", name, err)
		}
		out[name] = ts
	}
	*s = out
	return nil
}

// BetaRecord holds equity betas keyed by horizon label such as "Daily 1 Year".
type BetaRecord struct {
	Ticker string             `json:"ticker"`
	Betas  map[string]float64 `json:"betas"`
}

// Beta returns the beta for horizon.
func (b *BetaRecord) Beta(horizon string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	v, ok := b.Betas[horizon]
	return v, ok
}

// BasicInfo is the company directory record for a symbol.
type BasicInfo struct {
	Symbol   string
	LongName string
	Sector   string
	Fields   map[string]any
}

// Passthrough returns the record's fields minus identifying keys.
func (b *BasicInfo) Passthrough() map[string]any {
	out := make(map[string]any, len(b.Fields))
	for k, v := range b.Fields {
		if k == "symbol" || k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

// MarshalJSON writes the full record.
func (b BasicInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+3)
	for k, v := range b.Fields {
		out[k] = v
	}
	out["symbol"] = b.Symbol
	if b.LongName != "" {
		out["longName"] = b.LongName
	}
	if b.Sector != "" {
		out["sector"] = b.Sector
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a schema-less directory document.
func (b *BasicInfo) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	b.Fields = fields
	b.Symbol, _ = fields["symbol"].(string)
	b.LongName, _ = fields["longName"].(string)
	b.Sector, _ = fields["sector"].(string)
	return nil
}

// Quote represents a current price quote
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"lastPrice"`
	PreviousClose float64   `json:"previousClose"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"percentageChange"`
	DayHigh       float64   `json:"dayHigh"`
	DayLow        float64   `json:"dayLow"`
	Time          time.Time `json:"lastUpdateTime"`
	Source        string    `json:"source"`
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}
