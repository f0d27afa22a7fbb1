package models

import (
	"fmt"
	"time"
)

// Lens identifies one of the five evaluation dimensions.
type Lens string

const (
	LensValuation       Lens = "valuation"
	LensQuality         Lens = "quality"
	LensGrowth          Lens = "growth"
	LensFinancialHealth Lens = "financial_health"
	LensRiskMomentum    Lens = "risk_momentum"
)

// AllLenses returns the five lenses in presentation order.
func AllLenses() []Lens {
	return []Lens{LensValuation, LensQuality, LensGrowth, LensFinancialHealth, LensRiskMomentum}
}

// Title returns the human-readable lens name.
func (l Lens) Title() string {
	switch l {
	case LensValuation:
		return "Valuation"
	case LensQuality:
		return "Quality"
	case LensGrowth:
		return "Growth"
	case LensFinancialHealth:
		return "Financial Health"
	case LensRiskMomentum:
		return "Risk & Momentum"
	default:
		return string(l)
	}
}

// LensScores holds the five sub-scores and the composite, each in [0,100].
type LensScores struct {
	Valuation       float64 `json:"valuation" yaml:"valuation"`
	Quality         float64 `json:"quality" yaml:"quality"`
	Growth          float64 `json:"growth" yaml:"growth"`
	FinancialHealth float64 `json:"financial_health" yaml:"financial_health"`
	RiskMomentum    float64 `json:"risk_momentum" yaml:"risk_momentum"`
	Composite       float64 `json:"composite" yaml:"composite"`
}

// Get returns the score for a lens. Unknown lenses return 0.
func (s LensScores) Get(l Lens) float64 {
	switch l {
	case LensValuation:
		return s.Valuation
	case LensQuality:
		return s.Quality
	case LensGrowth:
		return s.Growth
	case LensFinancialHealth:
		return s.FinancialHealth
	case LensRiskMomentum:
		return s.RiskMomentum
	default:
		return 0
	}
}

// With returns a copy of s with lens l set to v. The composite is left untouched.
func (s LensScores) With(l Lens, v float64) LensScores {
	switch l {
	case LensValuation:
		s.Valuation = v
	case LensQuality:
		s.Quality = v
	case LensGrowth:
		s.Growth = v
	case LensFinancialHealth:
		s.FinancialHealth = v
	case LensRiskMomentum:
		s.RiskMomentum = v
	}
	return s
}

// InvestmentSignal is the five-state ordinal derived from a composite score.
type InvestmentSignal string

const (
	SignalStrongBuy InvestmentSignal = "STRONG_BUY"
	SignalBuy       InvestmentSignal = "BUY"
	SignalHold      InvestmentSignal = "HOLD"
	SignalWatch     InvestmentSignal = "WATCH"
	SignalAvoid     InvestmentSignal = "AVOID"
)

// Label returns the display label.
func (s InvestmentSignal) Label() string {
	switch s {
	case SignalStrongBuy:
		return "Strong Buy"
	case SignalBuy:
		return "Buy"
	case SignalHold:
		return "Hold / Accumulate"
	case SignalWatch:
		return "Watch"
	case SignalAvoid:
		return "Avoid"
	default:
		return string(s)
	}
}

// Color returns the display colour used by the dashboard.
func (s InvestmentSignal) Color() string {
	switch s {
	case SignalStrongBuy:
		return "green"
	case SignalBuy:
		return "blue"
	case SignalHold:
		return "orange"
	case SignalWatch:
		return "gray"
	default:
		return "red"
	}
}

// ComponentScore is one metric's contribution to a lens.
type ComponentScore struct {
	Field   FundamentalField `json:"field" yaml:"field"`
	Raw     float64          `json:"raw" yaml:"raw"`
	Score   float64          `json:"score" yaml:"score"`
	Weight  float64          `json:"weight" yaml:"weight"`   // normalised within the lens
	Present bool             `json:"present" yaml:"present"` // false = neutral substitute or excluded
}

// LensBreakdown explains how one lens score was assembled.
type LensBreakdown struct {
	Lens       Lens             `json:"lens" yaml:"lens"`
	Score      float64          `json:"score" yaml:"score"`
	Components []ComponentScore `json:"components" yaml:"components"`
}

// Evaluation is the full output of one five-lens evaluation.
type Evaluation struct {
	Ticker    string           `json:"ticker" yaml:"ticker"`
	Sector    string           `json:"sector,omitempty" yaml:"sector,omitempty"`
	Scores    LensScores       `json:"scores" yaml:"scores"`
	Signal    InvestmentSignal `json:"signal" yaml:"signal"`
	Weights   map[Lens]float64 `json:"weights" yaml:"weights"`
	Breakdown []LensBreakdown  `json:"breakdown" yaml:"breakdown"`
}

// Recommendation is the presentational summary derived from LensScores.
type Recommendation struct {
	Signal     InvestmentSignal `json:"signal" yaml:"signal"`
	Strengths  []string         `json:"strengths" yaml:"strengths"`
	Weaknesses []string         `json:"weaknesses" yaml:"weaknesses"`
	Text       string           `json:"text" yaml:"text"`
}

// CompanyReport bundles everything computed for one ticker in a run.
// Err is set when the ticker's data could not be fetched; the other
// fields are then zero.
type CompanyReport struct {
	Stock          Stock           `json:"stock" yaml:"stock"`
	Risk           *RiskMetrics    `json:"risk,omitempty" yaml:"risk,omitempty"`
	Evaluation     *Evaluation     `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Err            string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the report holds results.
func (r CompanyReport) OK() bool { return r.Err == "" && r.Evaluation != nil }

// Dashboard is one complete evaluation run across all tracked tickers.
type Dashboard struct {
	RunID        string             `json:"run_id" yaml:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at" yaml:"generated_at"`
	RiskFreeRate float64            `json:"risk_free_rate" yaml:"risk_free_rate"`
	Reports      []CompanyReport    `json:"reports" yaml:"reports"`
	Correlation  *CorrelationMatrix `json:"correlation,omitempty" yaml:"correlation,omitempty"`
}

// Report returns the report for ticker.
func (d Dashboard) Report(ticker string) (CompanyReport, error) {
	for _, r := range d.Reports {
		if r.Stock.Ticker == ticker {
			return r, nil
		}
	}
	return CompanyReport{}, fmt.Errorf("no report for %s", ticker)
}
