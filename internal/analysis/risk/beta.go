package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/techlens/pkg/models"
	"github.com/seenimoa/techlens/pkg/utils"
)

// Beta estimation defaults.
const (
	DefaultMinBetaObservations = 30
	DefaultMaxAbsBeta          = 5.0
	DefaultBeta                = 1.0
)

// BetaConfig parameterises the beta fallback chain. The zero value of a
// numeric field selects its default.
type BetaConfig struct {
	MinObservations int                // paired returns required for the covariance estimate
	MaxAbsBeta      float64            // estimates with |beta| >= this are rejected
	Default         float64            // last-resort value
	Table           map[string]float64 // static per-ticker lookup
}

// BetaEstimator resolves a beta for a ticker through three tiers:
// covariance estimate, static lookup table, hard default. It never reports
// an unknown beta. Safe for concurrent use; the table is copied at
// construction and never written again.
type BetaEstimator struct {
	minObs int
	maxAbs float64
	def    float64
	table  map[string]float64
}

// NewBetaEstimator creates an estimator from cfg.
func NewBetaEstimator(cfg BetaConfig) *BetaEstimator {
	e := &BetaEstimator{
		minObs: cfg.MinObservations,
		maxAbs: cfg.MaxAbsBeta,
		def:    cfg.Default,
		table:  make(map[string]float64, len(cfg.Table)),
	}
	if e.minObs <= 0 {
		e.minObs = DefaultMinBetaObservations
	}
	if e.maxAbs <= 0 {
		e.maxAbs = DefaultMaxAbsBeta
	}
	if e.def == 0 {
		e.def = DefaultBeta
	}
	for k, v := range cfg.Table {
		if isFinite(v) {
			e.table[utils.NormalizeTicker(k)] = v
		}
	}
	return e
}

// Estimate returns the beta of stock against market and which tier produced it.
func (e *BetaEstimator) Estimate(ticker string, stock, market models.PriceSeries) (float64, models.BetaSource) {
	s, m := AlignedReturns(stock, market)
	if b, ok := CovarianceBeta(s, m, e.minObs, e.maxAbs); ok {
		return b, models.BetaCalculated
	}
	return e.Lookup(ticker)
}

// Lookup skips the covariance tier and resolves ticker from the table or default.
func (e *BetaEstimator) Lookup(ticker string) (float64, models.BetaSource) {
	if b, ok := e.table[utils.NormalizeTicker(ticker)]; ok {
		return b, models.BetaLookup
	}
	return e.def, models.BetaDefault
}

// CovarianceBeta is cov(stock, market) / var(market) over paired returns,
// rounded to four decimals. ok is false when there are fewer than minObs
// pairs, the covariance is non-finite, the market variance is zero, or the
// estimate's magnitude reaches maxAbs.
func CovarianceBeta(stock, market []float64, minObs int, maxAbs float64) (float64, bool) {
	if len(stock) != len(market) || len(stock) < minObs || len(stock) < 2 {
		return 0, false
	}
	cov := stat.Covariance(stock, market, nil)
	variance := stat.Variance(market, nil)
	if !isFinite(cov) || !isFinite(variance) || variance == 0 {
		return 0, false
	}
	b := cov / variance
	if !isFinite(b) || math.Abs(b) >= maxAbs {
		return 0, false
	}
	return math.Round(b*10000) / 10000, true
}

// AlignedReturns computes daily returns for both series and inner-joins them
// by calendar date, dropping any date where either return is undefined.
func AlignedReturns(a, b models.PriceSeries) ([]float64, []float64) {
	ra := datedReturns(a)
	rb := datedReturns(b)
	if len(ra) == 0 || len(rb) == 0 {
		return nil, nil
	}

	byDate := make(map[string]float64, len(rb))
	for _, r := range rb {
		byDate[r.date] = r.value
	}

	xs := make([]float64, 0, len(ra))
	ys := make([]float64, 0, len(ra))
	for _, r := range ra {
		if v, ok := byDate[r.date]; ok {
			xs = append(xs, r.value)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

type datedReturn struct {
	date  string
	value float64
}

func datedReturns(s models.PriceSeries) []datedReturn {
	returns := Returns(s.Closes())
	out := make([]datedReturn, 0, len(returns))
	for i, r := range returns {
		if !isFinite(r) {
			continue
		}
		out = append(out, datedReturn{date: models.DateKey(s.Bars[i+1].Timestamp), value: r})
	}
	return out
}
