package models

// BetaSource records which tier of the beta fallback chain produced a value.
type BetaSource string

const (
	BetaCalculated BetaSource = "calculated"
	BetaLookup     BetaSource = "lookup"
	BetaDefault    BetaSource = "default"
)

// RiskLevel is the qualitative risk label shown next to the metrics table.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low Risk"
	RiskModerate RiskLevel = "Moderate Risk"
	RiskHigh     RiskLevel = "High Risk"
	RiskVeryHigh RiskLevel = "Very High Risk"
)

// TailRisk holds historical VaR and CVaR at one confidence level.
type TailRisk struct {
	Confidence float64 `json:"confidence" yaml:"confidence"`
	VaR        float64 `json:"var" yaml:"var"`
	CVaR       float64 `json:"cvar" yaml:"cvar"`
}

// RiskMetrics is the per-ticker risk/return summary. All values are decimals
// (0.12 = 12%). Volatility is never negative, MaxDrawdown never positive and
// each CVaR is at or below its VaR.
type RiskMetrics struct {
	Ticker       string     `json:"ticker" yaml:"ticker"`
	Observations int        `json:"observations" yaml:"observations"`
	AnnualReturn float64    `json:"annual_return" yaml:"annual_return"`
	Volatility   float64    `json:"volatility" yaml:"volatility"`
	SharpeRatio  float64    `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	SortinoRatio float64    `json:"sortino_ratio" yaml:"sortino_ratio"` // +Inf when no return fell below target and excess return is positive
	MaxDrawdown  float64    `json:"max_drawdown" yaml:"max_drawdown"`
	RecoveryDays int        `json:"recovery_days" yaml:"recovery_days"` // -1 = not yet recovered
	TailRisk     []TailRisk `json:"tail_risk" yaml:"tail_risk"`
	Beta         float64    `json:"beta" yaml:"beta"`
	BetaSource   BetaSource `json:"beta_source" yaml:"beta_source"`
	Assessment   RiskLevel  `json:"assessment" yaml:"assessment"`
}

// VaR returns the VaR at confidence c and whether it was computed.
func (m RiskMetrics) VaR(c float64) (float64, bool) {
	for _, t := range m.TailRisk {
		if t.Confidence == c {
			return t.VaR, true
		}
	}
	return 0, false
}

// CVaR returns the CVaR at confidence c and whether it was computed.
func (m RiskMetrics) CVaR(c float64) (float64, bool) {
	for _, t := range m.TailRisk {
		if t.Confidence == c {
			return t.CVaR, true
		}
	}
	return 0, false
}

// CorrelationMatrix holds pairwise return correlations, indexed like Tickers.
type CorrelationMatrix struct {
	Tickers []string    `json:"tickers" yaml:"tickers"`
	Values  [][]float64 `json:"values" yaml:"values"`
}

// At returns the correlation between tickers a and b.
func (c CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, t := range c.Tickers {
		if t == a {
			i = k
		}
		if t == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Values[i][j], true
}
