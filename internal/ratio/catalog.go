package ratio

import "github.com/newthinker/finratio/internal/core"

// Ratio names as they appear in reports.
const (
	ProductionEfficiency   = "Production Efficiency"
	OperationEfficiency    = "Operation Efficiency"
	TotalEfficiency        = "Total Efficiency"
	ProfitabilityRatio     = "Profitability Ratio"
	FixedAssetTurnover     = "Fixed Asset Turnover Ratio"
	WorkingCapitalTurnover = "Working Capital Turnover Ratio"
	InventoryTurnover      = "Inventory Turnover Ratio"
	TotalAssetTurnover     = "Total Asset Turnover Ratio"
	ReturnOnAsset          = "Return on Asset"
	EPS                    = "EPS"
	Leverage               = "Leverage"
	ReturnOnEquity         = "Return On Equity (ROE)"
	PriceToEarnings        = "Price To Equity (PE)"
)

// Fixed weights.
const (
	Weight5  = "5%"
	Weight10 = "10%"
)

// Statement line items read by the ratio catalog and its neighbours.
const (
	ItemTotalRevenue        = "Total Revenue"
	ItemOperatingIncome     = "Operating Income"
	ItemPretaxIncome        = "Pretax Income"
	ItemNetIncome           = "Net Income"
	ItemNetIncomeCommon     = "Net Income Common Stockholders"
	ItemBasicEPS            = "Basic EPS"
	ItemNetPPE              = "Net PPE"
	ItemInventory           = "Inventory"
	ItemWorkingCapital      = "Working Capital"
	ItemTotalAssets         = "Total Assets"
	ItemStockholdersEquity  = "Stockholders Equity"
	ItemOrdinarySharesCount = "Ordinary Shares Number"
)

// Operand names a line item on one statement.
type Operand struct {
	Kind core.StatementKind
	Item string
}

// Definition describes one quotient ratio.
type Definition struct {
	Name        string
	Numerator   Operand
	Denominator Operand
	Weight      string
}

func income(item string) Operand  { return Operand{Kind: core.StatementIncome, Item: item} }
func balance(item string) Operand { return Operand{Kind: core.StatementBalance, Item: item} }

// Quotients lists every ratio computed as a plain division, in report order
// minus the derived entries (Total Efficiency, EPS, PE).
var Quotients = []Definition{
	{ProductionEfficiency, income(ItemOperatingIncome), income(ItemTotalRevenue), Weight5},
	{OperationEfficiency, income(ItemPretaxIncome), income(ItemOperatingIncome), Weight5},
	{ProfitabilityRatio, income(ItemNetIncome), income(ItemTotalRevenue), Weight10},
	{FixedAssetTurnover, income(ItemTotalRevenue), balance(ItemNetPPE), Weight5},
	{WorkingCapitalTurnover, income(ItemTotalRevenue), balance(ItemWorkingCapital), Weight5},
	{InventoryTurnover, income(ItemTotalRevenue), balance(ItemInventory), Weight5},
	{TotalAssetTurnover, income(ItemTotalRevenue), balance(ItemTotalAssets), Weight10},
	{ReturnOnAsset, income(ItemNetIncome), balance(ItemTotalAssets), Weight10},
	{Leverage, balance(ItemTotalAssets), balance(ItemStockholdersEquity), Weight10},
	{ReturnOnEquity, income(ItemNetIncomeCommon), balance(ItemStockholdersEquity), Weight10},
}

// SectorRatios are the ratios averaged across a sector.
var SectorRatios = []string{
	ProductionEfficiency,
	OperationEfficiency,
	TotalEfficiency,
	ProfitabilityRatio,
	FixedAssetTurnover,
	InventoryTurnover,
	TotalAssetTurnover,
	ReturnOnAsset,
	EPS,
}

// Statements is the pair of statements the catalog reads from.
type Statements struct {
	Income  core.Statement
	Balance core.Statement
}

func (s Statements) lookup(o Operand) *core.TimeSeries {
	switch o.Kind {
	case core.StatementIncome:
		return s.Income.Item(o.Item)
	case core.StatementBalance:
		return s.Balance.Item(o.Item)
	}
	return nil
}

// Build evaluates one definition. A missing numerator series produces the
// degenerate stub instead of an error.
func Build(def Definition, st Statements) Series {
	num := st.lookup(def.Numerator)
	if num == nil {
		return DegenerateSeries(def.Weight)
	}
	return Annotate(Compute(num, st.lookup(def.Denominator)), def.Weight)
}

// BuildSet computes every statement-derived ratio in report order. The PE
// ratio needs prices and is appended by the caller.
func BuildSet(st Statements) *Set {
	built := make(map[string]Series, len(Quotients))
	for _, def := range Quotients {
		built[def.Name] = Build(def, st)
	}

	total := Annotate(Multiply(
		built[ProductionEfficiency].Values,
		built[OperationEfficiency].Values,
	), Weight5)

	eps := Annotate(st.Income.Item(ItemBasicEPS).Clone(), Weight10)

	set := NewSet()
	set.Add(ProductionEfficiency, built[ProductionEfficiency])
	set.Add(OperationEfficiency, built[OperationEfficiency])
	set.Add(TotalEfficiency, total)
	set.Add(ProfitabilityRatio, built[ProfitabilityRatio])
	set.Add(FixedAssetTurnover, built[FixedAssetTurnover])
	set.Add(WorkingCapitalTurnover, built[WorkingCapitalTurnover])
	set.Add(InventoryTurnover, built[InventoryTurnover])
	set.Add(TotalAssetTurnover, built[TotalAssetTurnover])
	set.Add(ReturnOnAsset, built[ReturnOnAsset])
	set.Add(EPS, eps)
	set.Add(Leverage, built[Leverage])
	set.Add(ReturnOnEquity, built[ReturnOnEquity])
	return set
}
