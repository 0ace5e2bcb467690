package dcf

// Params are the market assumptions of a valuation.
type Params struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	MarketReturn float64 `mapstructure:"market_return"`
	BetaHorizon  string  `mapstructure:"beta_horizon"`
}

// DefaultParams returns the Indian-market assumptions the model was built on.
func DefaultParams() Params {
	return Params{
		RiskFreeRate: 7.095,
		MarketReturn: 12,
		BetaHorizon:  "Daily 1 Year",
	}
}

// EquityRiskPremium is the market return in excess of the risk-free rate.
func (p Params) EquityRiskPremium() float64 {
	return p.MarketReturn - p.RiskFreeRate
}
