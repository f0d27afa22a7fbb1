package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultConfidenceLevels are the VaR/CVaR levels reported by default.
var DefaultConfidenceLevels = []float64{0.90, 0.95, 0.99}

// VaR is the historical-simulation Value at Risk of daily returns: the
// (1-confidence) percentile of the return distribution. Expressed as a
// return, so a loss is negative.
func VaR(returns []float64, confidence float64) float64 {
	v, _ := VaRCVaR(returns, confidence, 1)
	return v
}

// CVaR is the mean of the returns at or below VaR, falling back to VaR
// itself when that tail is empty. CVaR ≤ VaR always holds.
func CVaR(returns []float64, confidence float64) float64 {
	_, c := VaRCVaR(returns, confidence, 1)
	return c
}

// VaRCVaR computes VaR and CVaR over holdingPeriod-day returns, formed by a
// rolling sum of holdingPeriod consecutive daily returns. holdingPeriod ≤ 1
// means daily. Both values are 0 when fewer than two returns are defined,
// when the holding period leaves nothing to aggregate, or when confidence
// lies outside (0,1).
func VaRCVaR(returns []float64, confidence float64, holdingPeriod int) (float64, float64) {
	r := dropUndefined(returns)
	if len(r) < 2 || confidence <= 0 || confidence >= 1 {
		return 0, 0
	}

	hp := rollingSum(r, holdingPeriod)
	if len(hp) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(hp))
	copy(sorted, hp)
	sort.Float64s(sorted)

	v := percentile(sorted, 1-confidence)

	// sorted is ascending, so the tail is a prefix.
	n := sort.Search(len(sorted), func(i int) bool { return sorted[i] > v })
	if n == 0 {
		return v, v
	}
	c := stat.Mean(sorted[:n], nil)
	if !isFinite(c) || c > v {
		c = v
	}
	return v, c
}

// rollingSum returns the sums of every window of `window` consecutive values.
func rollingSum(xs []float64, window int) []float64 {
	if window <= 1 {
		return xs
	}
	if len(xs) < window {
		return nil
	}
	out := make([]float64, 0, len(xs)-window+1)
	for i := 0; i+window <= len(xs); i++ {
		out = append(out, floats.Sum(xs[i:i+window]))
	}
	return out
}

// percentile interpolates linearly between closest ranks at position
// (n-1)·p of an ascending slice. p is a fraction in [0,1].
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
