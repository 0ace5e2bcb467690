// Package dupont splits return on equity into its five DuPont factors.
package dupont

import (
	"bytes"

	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/ratio"
)

// Factor names as they appear in reports.
const (
	TaxEffect           = "Tax Effect"
	InterestEffect      = "Interest Effect"
	ProfitabilityEffect = "Profitability Effect"
	AssetEffect         = "Asset Effect"
	LeverageEffect      = "Leverage Effect"
)

// Factors holds the five undecorated factor series. Their product for a
// period approximates net income over stockholders equity.
type Factors struct {
	Tax           *core.TimeSeries
	Interest      *core.TimeSeries
	Profitability *core.TimeSeries
	Asset         *core.TimeSeries
	Leverage      *core.TimeSeries
}

// Decompose computes every factor with the ratio engine's zero-or-missing
// rule. A factor whose numerator line item is absent becomes the NaN stub.
func Decompose(income, balance core.Statement) Factors {
	return Factors{
		Tax:           factor(income.Item(ratio.ItemNetIncome), income.Item(ratio.ItemPretaxIncome)),
		Interest:      factor(income.Item(ratio.ItemPretaxIncome), income.Item(ratio.ItemOperatingIncome)),
		Profitability: factor(income.Item(ratio.ItemOperatingIncome), income.Item(ratio.ItemTotalRevenue)),
		Asset:         factor(income.Item(ratio.ItemTotalRevenue), balance.Item(ratio.ItemNetPPE)),
		Leverage:      factor(balance.Item(ratio.ItemNetPPE), balance.Item(ratio.ItemStockholdersEquity)),
	}
}

func factor(num, den *core.TimeSeries) *core.TimeSeries {
	if num == nil {
		return ratio.Degenerate()
	}
	return ratio.Compute(num, den)
}

// Product multiplies the five factors at label. It reports false when any
// factor lacks the label.
func (f Factors) Product(label string) (float64, bool) {
	out := 1.0
	for _, s := range f.series() {
		v, ok := s.Get(label)
		if !ok {
			return 0, false
		}
		out *= v
	}
	return out, true
}

func (f Factors) series() []*core.TimeSeries {
	return []*core.TimeSeries{f.Tax, f.Interest, f.Profitability, f.Asset, f.Leverage}
}

// MarshalJSON writes the factors in decomposition order.
func (f Factors) MarshalJSON() ([]byte, error) {
	names := []string{TaxEffect, InterestEffect, ProfitabilityEffect, AssetEffect, LeverageEffect}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range f.series() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"` + names[i] + `":`)
		if s == nil {
			buf.WriteString("{}")
			continue
		}
		b, err := s.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
