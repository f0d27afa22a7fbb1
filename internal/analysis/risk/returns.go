// Package risk computes return and risk metrics over daily price history.
//
// Every exported function is total: under-populated or degenerate input yields
// a documented neutral value instead of an error, and no function keeps state
// between calls.
package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualisation factor for daily data.
const TradingDaysPerYear = 252

// Returns computes simple period-over-period returns. The result has
// len(prices)-1 elements; an entry is NaN when it is undefined (previous
// price zero or either price non-finite).
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, curr := prices[i-1], prices[i]
		if prev == 0 || !isFinite(prev) || !isFinite(curr) {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = (curr - prev) / prev
	}
	return returns
}

// AnnualReturn is the geometric annualised return (P[n-1]/P[0])^(252/n) - 1.
// Returns 0 for fewer than two prices, a zero first price, or a non-finite result.
func AnnualReturn(prices []float64) float64 {
	n := len(prices)
	if n < 2 || prices[0] == 0 {
		return 0
	}
	total := prices[n-1] / prices[0]
	ann := math.Pow(total, float64(TradingDaysPerYear)/float64(n)) - 1
	if !isFinite(ann) {
		return 0
	}
	return ann
}

// TotalReturn is the simple return over the whole series.
func TotalReturn(prices []float64) float64 {
	n := len(prices)
	if n < 2 || prices[0] == 0 {
		return 0
	}
	r := prices[n-1]/prices[0] - 1
	if !isFinite(r) {
		return 0
	}
	return r
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// dropUndefined returns the finite entries of xs in order.
func dropUndefined(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if isFinite(x) {
			out = append(out, x)
		}
	}
	return out
}

// meanStd returns the mean and sample standard deviation of xs.
// Callers guarantee len(xs) >= 2.
func meanStd(xs []float64) (float64, float64) {
	return stat.MeanStdDev(xs, nil)
}
