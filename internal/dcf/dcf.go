// Package dcf estimates the intrinsic value of a company's common equity
// by discounting projected free cash flow to equity.
//
// Every intermediate quantity is kept on the Result. Division by zero is
// not trapped: it surfaces as NaN or ±Inf and callers check Computable.
package dcf

import (
	"fmt"
	"math"

	"github.com/newthinker/finratio/internal/core"
)

// Line items read by the model.
const (
	ItemCommonStockEquity    = "Common Stock Equity"
	ItemTotalDebt            = "Total Debt"
	ItemStockholdersEquity   = "Stockholders Equity"
	ItemCash                 = "Cash And Cash Equivalents"
	ItemInvestedCapital      = "Invested Capital"
	ItemMinorityInterest     = "Minority Interest"
	ItemNetPPE               = "Net PPE"
	ItemWorkingCapital       = "Working Capital"
	ItemInterestExpense      = "Interest Expense"
	ItemEBIT                 = "EBIT"
	ItemDilutedEPS           = "Diluted EPS"
	ItemDepreciation         = "Reconciled Depreciation"
	ItemDilutedAverageShares = "Diluted Average Shares"
	ItemPretaxIncome         = "Pretax Income"
	ItemNetIncome            = "Net Income"
	ItemBeginningCash        = "Beginning Cash Position"
	ItemChangesInCash        = "Changes In Cash"
)

// Horizon is the number of projected years; the last one feeds the
// terminal value.
const Horizon = 6

// Inputs are the documents a valuation reads.
type Inputs struct {
	Beta     *core.BetaRecord
	Balance  core.Statement
	Income   core.Statement
	Cashflow core.Statement
}

func (in Inputs) validate() error {
	switch {
	case in.Beta == nil:
		return missing("beta record")
	case in.Cashflow == nil:
		return missing("cash flow statement")
	case in.Balance.Item(ItemNetPPE) == nil:
		return missing(ItemNetPPE)
	case in.Balance.Item(ItemWorkingCapital) == nil:
		return missing(ItemWorkingCapital)
	case in.Income.Item(ItemDilutedEPS) == nil:
		return missing(ItemDilutedEPS)
	}
	return nil
}

func missing(what string) error {
	return core.WrapError(core.ErrStatementNotFound, fmt.Errorf("dcf: %s", what))
}

// Valuate runs the model. It fails only when a required document or line
// item is absent; numeric degeneracy is reported through the Result.
func Valuate(in Inputs, p Params) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	r := &Result{
		Equity:               latest(in.Balance.Item(ItemCommonStockEquity)),
		TotalDebt:            latest(in.Balance.Item(ItemTotalDebt)),
		InterestExpense:      latest(in.Income.Item(ItemInterestExpense)),
		EBIT:                 latest(in.Income.Item(ItemEBIT)),
		Depreciation:         latest(in.Income.Item(ItemDepreciation)),
		BeginningCash:        latest(in.Cashflow.Item(ItemBeginningCash)),
		ChangesInCash:        latest(in.Cashflow.Item(ItemChangesInCash)),
		ShareholdersEquity:   latest(in.Balance.Item(ItemStockholdersEquity)),
		Cash:                 latest(in.Balance.Item(ItemCash)),
		InvestedCapital:      latest(in.Balance.Item(ItemInvestedCapital)),
		MinorityInterest:     latest(in.Balance.Item(ItemMinorityInterest)),
		DilutedAverageShares: latest(in.Income.Item(ItemDilutedAverageShares)),
		RiskFreeRate:         p.RiskFreeRate,
		EquityRiskPremium:    p.EquityRiskPremium(),
	}

	leveredBeta, ok := in.Beta.Beta(p.BetaHorizon)
	if !ok {
		leveredBeta = math.NaN()
	}

	r.Capex = diff(in.Balance.Item(ItemNetPPE)) + r.Depreciation
	r.ChangeInWorkingCapital = diff(in.Balance.Item(ItemWorkingCapital))
	r.Tax = taxRate(in.Income)
	afterTax := 1 - r.Tax

	r.UnleveredBeta = leveredBeta * r.Equity / (r.Equity + r.TotalDebt*afterTax)
	r.ReleveredBeta = r.UnleveredBeta * (r.Equity + r.TotalDebt*afterTax) / r.Equity

	r.CostOfDebt = r.InterestExpense / r.TotalDebt
	r.CostOfDebtAfterTax = r.CostOfDebt * afterTax
	r.CostOfEquity = r.ReleveredBeta*r.EquityRiskPremium + r.RiskFreeRate

	capital := r.TotalDebt + r.Equity
	r.WeightOfDebt = r.TotalDebt / capital
	r.WeightOfEquity = r.Equity / capital
	r.WACC = r.WeightOfDebt*r.CostOfDebtAfterTax + r.WeightOfEquity*r.CostOfEquity

	nopat := r.EBIT * afterTax
	r.FCFF = nopat + r.Depreciation - r.Capex - r.ChangeInWorkingCapital
	r.FCFE = r.FCFF - r.InterestExpense*afterTax + (r.BeginningCash + r.ChangesInCash)

	r.ReinvestmentRate = (r.Capex - r.Depreciation + r.ChangeInWorkingCapital) / nopat
	r.ROC = nopat / (r.ShareholdersEquity + r.TotalDebt - r.Cash)
	r.ROE = r.ROC + (r.TotalDebt/r.ShareholdersEquity)*(r.ROC-r.CostOfDebtAfterTax)

	r.SustainableGrowth = r.ReinvestmentRate * r.ROE
	r.EPSGrowth = growth(in.Income.Item(ItemDilutedEPS))
	r.LongTermGrowth = SelectGrowth(r.EPSGrowth, r.SustainableGrowth)

	project(r)
	return r, nil
}

// project fills the projections, discount factors and the values built
// from them.
func project(r *Result) {
	flow := r.FCFE
	for k := 0; k < Horizon; k++ {
		flow *= 1 + r.LongTermGrowth
		r.Projections[k] = flow
		r.DiscountFactors[k] = 1 / math.Pow(1+r.WACC/100, float64(k+1))
	}

	r.ExplicitPV = 0
	for k := 0; k < Horizon-1; k++ {
		r.ExplicitPV += r.Projections[k] * r.DiscountFactors[k]
	}

	r.TerminalValue = TerminalValue(r.Projections[Horizon-1], r.WACC, r.LongTermGrowth)
	r.TerminalPV = r.DiscountFactors[Horizon-1] * r.TerminalValue
	r.EquityValue = r.ExplicitPV + r.TerminalPV
	r.CommonEquityValue = math.Abs(r.EquityValue + r.InvestedCapital - r.TotalDebt + r.Cash - r.MinorityInterest)
}

// TerminalValue is the Gordon growth value of the final projected flow.
// wacc is a percentage, growth a fraction.
func TerminalValue(finalFlow, wacc, growth float64) float64 {
	return finalFlow / (wacc/100 - growth)
}

// SelectGrowth picks the long-term growth rate from EPS growth and
// sustainable growth. Both positive takes the smaller, both negative the
// larger; any other combination also takes the larger.
func SelectGrowth(eps, sustainable float64) float64 {
	switch {
	case eps > 0 && sustainable > 0:
		if eps < sustainable {
			return eps
		}
		return sustainable
	case eps < 0 && sustainable < 0:
		if eps > sustainable {
			return eps
		}
		return sustainable
	default:
		if eps > sustainable {
			return eps
		}
		return sustainable
	}
}

// latest returns the most recent value, treating a missing series or a
// null value as 0.
func latest(s *core.TimeSeries) float64 {
	v, ok := s.Latest()
	if !ok || math.IsNaN(v) {
		return 0
	}
	return v
}

// diff is the change between the two most recent periods. A series with
// fewer than two periods yields NaN.
func diff(s *core.TimeSeries) float64 {
	points := s.Points()
	if len(points) < 2 {
		return math.NaN()
	}
	return zeroNull(points[0].Value) - zeroNull(points[1].Value)
}

func taxRate(income core.Statement) float64 {
	pretax := latest(income.Item(ItemPretaxIncome))
	net := latest(income.Item(ItemNetIncome))
	return (pretax - net) / pretax
}

// growth is the geometric mean growth between the newest and oldest values
// as a fraction.
func growth(s *core.TimeSeries) float64 {
	points := s.Points()
	if len(points) == 0 {
		return math.NaN()
	}
	newest := zeroNull(points[0].Value)
	oldest := zeroNull(points[len(points)-1].Value)
	return core.Pow(newest/oldest, 1/float64(len(points)-1)) - 1
}

func zeroNull(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
