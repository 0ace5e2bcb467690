package dupont

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/ratio"
)

const (
	fy24 = "2024-03-31T00:00:00+00:00"
	fy23 = "2023-03-31T00:00:00+00:00"
)

func twoYear(latest, prior float64) *core.TimeSeries {
	return core.NewTimeSeries(core.Point{Label: fy24, Value: latest}, core.Point{Label: fy23, Value: prior})
}

func statements() (core.Statement, core.Statement) {
	income := core.Statement{
		ratio.ItemNetIncome:       twoYear(150, 120),
		ratio.ItemPretaxIncome:    twoYear(200, 160),
		ratio.ItemOperatingIncome: twoYear(250, 200),
		ratio.ItemTotalRevenue:    twoYear(1000, 800),
	}
	balance := core.Statement{
		ratio.ItemNetPPE:             twoYear(500, 400),
		ratio.ItemStockholdersEquity: twoYear(1250, 1000),
	}
	return income, balance
}

func TestDecompose_Factors(t *testing.T) {
	f := Decompose(statements())

	tests := []struct {
		name string
		s    *core.TimeSeries
		want float64
	}{
		{TaxEffect, f.Tax, 0.75},
		{InterestEffect, f.Interest, 0.8},
		{ProfitabilityEffect, f.Profitability, 0.25},
		{AssetEffect, f.Asset, 2},
		{LeverageEffect, f.Leverage, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.s.Get(fy24)
			if !ok || v != tt.want {
				t.Errorf("expected %v, got %v (found=%v)", tt.want, v, ok)
			}
		})
	}
}

func TestDecompose_ProductApproximatesROE(t *testing.T) {
	income, balance := statements()
	f := Decompose(income, balance)

	for _, label := range []string{fy24, fy23} {
		got, ok := f.Product(label)
		if !ok {
			t.Fatalf("no product at %s", label)
		}
		ni, _ := income.Item(ratio.ItemNetIncome).Get(label)
		eq, _ := balance.Item(ratio.ItemStockholdersEquity).Get(label)
		if math.Abs(ni/eq-got) > 0.005 {
			t.Errorf("%s: product %v too far from ROE %v", label, got, ni/eq)
		}
	}
}

func TestDecompose_ZeroOperandYieldsZero(t *testing.T) {
	income, balance := statements()
	income[ratio.ItemPretaxIncome] = twoYear(0, 160)

	f := Decompose(income, balance)

	for name, s := range map[string]*core.TimeSeries{TaxEffect: f.Tax, InterestEffect: f.Interest} {
		if v, _ := s.Get(fy24); v != 0 {
			t.Errorf("%s: expected 0, got %v", name, v)
		}
	}
}

func TestDecompose_MissingNumeratorIsStub(t *testing.T) {
	income, balance := statements()
	delete(balance, ratio.ItemNetPPE)

	f := Decompose(income, balance)

	if !reflect.DeepEqual(f.Leverage.Labels(), ratio.FallbackLabels) {
		t.Errorf("expected fallback labels, got %v", f.Leverage.Labels())
	}
	for _, p := range f.Leverage.Points() {
		if !math.IsNaN(p.Value) {
			t.Errorf("expected NaN at %s, got %v", p.Label, p.Value)
		}
	}
	// A missing denominator still yields zero.
	if v, _ := f.Asset.Get(fy24); v != 0 {
		t.Errorf("expected 0 asset effect, got %v", v)
	}
	if _, ok := f.Product(fy24); ok {
		t.Error("expected no product when a factor is a stub")
	}
}

func TestFactors_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(Decompose(statements()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]map[string]float64
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded) != 5 {
		t.Errorf("expected 5 factors, got %d", len(decoded))
	}
	if decoded[TaxEffect][fy24] != 0.75 || decoded[LeverageEffect][fy24] != 0.4 {
		t.Errorf("unexpected factors %v", decoded)
	}
}
