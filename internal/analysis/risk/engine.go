package risk

import (
	"slices"

	"github.com/seenimoa/techlens/pkg/models"
)

// Config holds the engine's immutable parameters.
type Config struct {
	ConfidenceLevels []float64 // VaR/CVaR levels, reported in this order
	HoldingPeriod    int       // days aggregated before taking VaR; ≤1 = daily
	Beta             BetaConfig
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceLevels: slices.Clone(DefaultConfidenceLevels),
		HoldingPeriod:    1,
		Beta: BetaConfig{
			MinObservations: DefaultMinBetaObservations,
			MaxAbsBeta:      DefaultMaxAbsBeta,
			Default:         DefaultBeta,
		},
	}
}

// Engine assembles full RiskMetrics records. It holds only configuration
// and may be shared between goroutines.
type Engine struct {
	levels  []float64
	holding int
	beta    *BetaEstimator
}

// NewEngine creates an engine. An empty confidence list falls back to
// DefaultConfidenceLevels.
func NewEngine(cfg Config) *Engine {
	levels := slices.Clone(cfg.ConfidenceLevels)
	if len(levels) == 0 {
		levels = slices.Clone(DefaultConfidenceLevels)
	}
	return &Engine{
		levels:  levels,
		holding: cfg.HoldingPeriod,
		beta:    NewBetaEstimator(cfg.Beta),
	}
}

// Beta exposes the engine's beta estimator.
func (e *Engine) Beta() *BetaEstimator { return e.beta }

// Summarize computes every risk metric for series. market is the benchmark
// used for beta; an empty market series sends beta straight to the lookup
// tier. riskFreeRate is an annual decimal.
func (e *Engine) Summarize(series, market models.PriceSeries, riskFreeRate float64) models.RiskMetrics {
	prices := series.Closes()
	returns := Returns(prices)

	m := models.RiskMetrics{
		Ticker:       series.Ticker,
		Observations: len(prices),
		AnnualReturn: AnnualReturn(prices),
		Volatility:   Volatility(returns, true),
		SharpeRatio:  Sharpe(returns, riskFreeRate),
		SortinoRatio: Sortino(returns, riskFreeRate, 0),
		MaxDrawdown:  MaxDrawdown(prices),
		RecoveryDays: RecoveryDays(prices, series.Dates()),
		TailRisk:     make([]models.TailRisk, 0, len(e.levels)),
	}

	for _, c := range e.levels {
		v, cv := VaRCVaR(returns, c, e.holding)
		m.TailRisk = append(m.TailRisk, models.TailRisk{Confidence: c, VaR: v, CVaR: cv})
	}

	m.Beta, m.BetaSource = e.beta.Estimate(series.Ticker, series, market)

	// Assessment always uses the daily 95% figure.
	var95, _ := VaRCVaR(returns, 0.95, 1)
	m.Assessment = Assess(m.Volatility, var95, m.SharpeRatio)
	return m
}
