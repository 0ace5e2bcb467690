package dcf

import (
	"bytes"
	"fmt"

	"github.com/newthinker/finratio/internal/core"
)

// Result is every quantity the model derives for one company. Rates are
// percentages except Tax, the growth rates and the returns, which are
// fractions.
type Result struct {
	WACC                 float64
	Equity               float64
	TotalDebt            float64
	InterestExpense      float64
	EBIT                 float64
	Depreciation         float64
	BeginningCash        float64
	ChangesInCash        float64
	ShareholdersEquity   float64
	Cash                 float64
	InvestedCapital      float64
	MinorityInterest     float64
	DilutedAverageShares float64

	Capex                  float64
	ChangeInWorkingCapital float64
	Tax                    float64
	UnleveredBeta          float64
	ReleveredBeta          float64
	CostOfDebt             float64
	CostOfDebtAfterTax     float64
	RiskFreeRate           float64
	EquityRiskPremium      float64
	CostOfEquity           float64
	WeightOfDebt           float64
	WeightOfEquity         float64

	FCFF              float64
	FCFE              float64
	ReinvestmentRate  float64
	ROC               float64
	ROE               float64
	SustainableGrowth float64
	EPSGrowth         float64
	LongTermGrowth    float64

	Projections     [Horizon]float64
	DiscountFactors [Horizon]float64

	ExplicitPV        float64
	TerminalValue     float64
	TerminalPV        float64
	EquityValue       float64
	CommonEquityValue float64
}

// Computable reports whether the final value is a finite number.
func (r *Result) Computable() bool {
	return r != nil && !core.IsDegenerate(r.CommonEquityValue)
}

type field struct {
	key   string
	value float64
}

func (r *Result) fields() []field {
	out := []field{
		{"WACC", r.WACC},
		{"equity", r.Equity},
		{"latestTotalDebt", r.TotalDebt},
		{"latestInterestExpense", r.InterestExpense},
		{"latestEbit", r.EBIT},
		{"latestDepreciation", r.Depreciation},
		{"latestBeginningCashPosition", r.BeginningCash},
		{"latestChangesInCash", r.ChangesInCash},
		{"latestShareholdersEquity", r.ShareholdersEquity},
		{"latestcashAndCashEquivalents", r.Cash},
		{"latestinvestedCapital", r.InvestedCapital},
		{"latestMinorityInterest", r.MinorityInterest},
		{"latestDilutedAverageShares", r.DilutedAverageShares},
		{"CAPEX", r.Capex},
		{"changeInWorkingCapital", r.ChangeInWorkingCapital},
		{"tax", r.Tax},
		{"unleveredBeta", r.UnleveredBeta},
		{"releveredBeta", r.ReleveredBeta},
		{"costOfDebt_kd", r.CostOfDebt},
		{"costOfDebt_netOfTaxes", r.CostOfDebtAfterTax},
		{"rf", r.RiskFreeRate},
		{"ERP", r.EquityRiskPremium},
		{"costOfEquity", r.CostOfEquity},
		{"weightOfDebt", r.WeightOfDebt},
		{"weightOfEquity", r.WeightOfEquity},
		{"FCFF", r.FCFF},
		{"FCFE", r.FCFE},
		{"reinvestmentRate", r.ReinvestmentRate},
		{"ROC", r.ROC},
		{"ROE", r.ROE},
		{"grownInNetIncome", r.SustainableGrowth},
		{"epsGrowth", r.EPSGrowth},
		{"lt_grownRate", r.LongTermGrowth},
	}
	for k, v := range r.Projections {
		out = append(out, field{fmt.Sprintf("_%d_year_projection", k+1), v})
	}
	for k, v := range r.DiscountFactors {
		out = append(out, field{fmt.Sprintf("_%d_discounting_factor", k+1), v})
	}
	return append(out,
		field{"PV_of_fcfe_5_yr", r.ExplicitPV},
		field{"terminalValue", r.TerminalValue},
		field{"presentValue", r.TerminalPV},
		field{"DCF_value_Equity", r.EquityValue},
		field{"DCF_value_common_equity", r.CommonEquityValue},
	)
}

// MarshalJSON writes the quantities in derivation order with null for
// non-finite values.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := core.WriteField(&buf, f.key, f.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
