package models

import "math"

// FundamentalField names one entry of a company's fundamentals map.
type FundamentalField string

// Valuation ratios.
const (
	FieldPE            FundamentalField = "pe_ratio"
	FieldPB            FundamentalField = "pb_ratio"
	FieldPS            FundamentalField = "ps_ratio"
	FieldDividendYield FundamentalField = "dividend_yield"
)

// Profitability ratios (decimals, 0.25 = 25%).
const (
	FieldROE       FundamentalField = "roe"
	FieldNetMargin FundamentalField = "net_margin"
	FieldROIC      FundamentalField = "roic"
	FieldROA       FundamentalField = "roa"
)

// Growth rates.
const (
	FieldRevenueGrowth  FundamentalField = "revenue_growth_yoy"
	FieldEarningsGrowth FundamentalField = "earnings_growth_yoy"
	FieldPEG            FundamentalField = "peg_ratio"
)

// Leverage and liquidity.
const (
	FieldDebtToEquity     FundamentalField = "debt_to_equity"
	FieldCurrentRatio     FundamentalField = "current_ratio"
	FieldInterestCoverage FundamentalField = "interest_coverage"
	FieldFreeCashFlow     FundamentalField = "free_cash_flow"
)

// Momentum.
const (
	FieldMomentum52w FundamentalField = "price_momentum_52w"
)

// Risk-derived inputs. These come from RiskMetrics, never from a provider's
// fundamentals, and are not listed by AllFundamentalFields.
const (
	FieldBeta       FundamentalField = "beta"
	FieldVolatility FundamentalField = "volatility"
	FieldSharpe     FundamentalField = "sharpe_ratio"
)

// AllFundamentalFields lists every known field in display order.
func AllFundamentalFields() []FundamentalField {
	return []FundamentalField{
		FieldPE, FieldPB, FieldPS, FieldDividendYield,
		FieldROE, FieldNetMargin, FieldROIC, FieldROA,
		FieldRevenueGrowth, FieldEarningsGrowth, FieldPEG,
		FieldDebtToEquity, FieldCurrentRatio, FieldInterestCoverage, FieldFreeCashFlow,
		FieldMomentum52w,
	}
}

// Fundamentals is a flat map of named fundamental values for one company.
// A missing key means "unknown", which is distinct from a present zero.
type Fundamentals map[FundamentalField]float64

// Get returns the value for field. ok is false when the key is missing or the
// stored value is NaN or infinite.
func (f Fundamentals) Get(field FundamentalField) (float64, bool) {
	v, ok := f[field]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Has reports whether field holds a usable value.
func (f Fundamentals) Has(field FundamentalField) bool {
	_, ok := f.Get(field)
	return ok
}

// Clone returns an independent copy so callers can hand out snapshots.
func (f Fundamentals) Clone() Fundamentals {
	out := make(Fundamentals, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
