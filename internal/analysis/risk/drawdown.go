package risk

import (
	"math"
	"time"
)

// MaxDrawdown is the most negative (P − running peak) / running peak over
// the series. The first price seeds the peak. Always ≤ 0, and exactly 0 iff
// the series never falls below an earlier price. Fewer than two prices → 0.
func MaxDrawdown(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	dd, _, _ := maxDrawdownAt(prices)
	return dd
}

// RollingDrawdown returns the max drawdown of every window of `window`
// consecutive prices, with the peak restarting at each window's first price.
// The result has len(prices)-window+1 entries; it is empty when the series
// is shorter than window or window < 2.
func RollingDrawdown(prices []float64, window int) []float64 {
	if window < 2 || len(prices) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(prices)-window+1)
	for start := 0; start+window <= len(prices); start++ {
		dd, _, _ := maxDrawdownAt(prices[start : start+window])
		out = append(out, dd)
	}
	return out
}

// RecoveryDays returns the calendar days between the max-drawdown trough and
// the first later date whose price is at or above the pre-trough peak.
// It returns -1 when the price has not recovered, and 0 when there is no
// drawdown or fewer than two points. prices and dates must be parallel.
func RecoveryDays(prices []float64, dates []time.Time) int {
	if len(prices) < 2 || len(prices) != len(dates) {
		return 0
	}
	dd, trough, peak := maxDrawdownAt(prices)
	if dd == 0 {
		return 0
	}
	for i := trough; i < len(prices); i++ {
		if prices[i] >= peak {
			days := int(math.Round(dates[i].Sub(dates[trough]).Hours() / 24))
			return max(0, days)
		}
	}
	return -1
}

// maxDrawdownAt scans prices once and returns the max drawdown, the index of
// its trough and the running peak at that trough. Non-positive or non-finite
// prices never become a peak and are skipped as troughs.
func maxDrawdownAt(prices []float64) (dd float64, trough int, peak float64) {
	running := math.NaN()
	for i, p := range prices {
		if !isFinite(p) {
			continue
		}
		if p > 0 && (math.IsNaN(running) || p > running) {
			running = p
		}
		if math.IsNaN(running) {
			continue
		}
		if d := (p - running) / running; d < dd {
			dd, trough, peak = d, i, running
		}
	}
	return dd, trough, peak
}
