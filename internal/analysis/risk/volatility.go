package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Volatility is the sample standard deviation of returns, annualised by
// sqrt(252) when annualize is set. Undefined entries are dropped first;
// fewer than two remaining returns yields 0.
func Volatility(returns []float64, annualize bool) float64 {
	r := dropUndefined(returns)
	if len(r) < 2 {
		return 0
	}
	sd := stat.StdDev(r, nil)
	if !isFinite(sd) {
		return 0
	}
	if annualize {
		return sd * math.Sqrt(TradingDaysPerYear)
	}
	return sd
}

// Sharpe is (mean(R)·252 − rf) / (stdev(R)·√252). rf is an annual decimal.
// Zero volatility yields 0.
func Sharpe(returns []float64, riskFreeRate float64) float64 {
	r := dropUndefined(returns)
	if len(r) < 2 {
		return 0
	}
	mean, sd := meanStd(r)
	annVol := sd * math.Sqrt(TradingDaysPerYear)
	if annVol == 0 || !isFinite(annVol) {
		return 0
	}
	s := (mean*TradingDaysPerYear - riskFreeRate) / annVol
	if !isFinite(s) {
		return 0
	}
	return s
}

// Sortino is (mean(R)·252 − rf) / (stdev(R below target)·√252).
//
// With no return strictly below target the ratio is +Inf when the excess
// return is positive and 0 otherwise. A downside deviation that is zero or
// undefined (a single below-target return) yields 0.
func Sortino(returns []float64, riskFreeRate, target float64) float64 {
	r := dropUndefined(returns)
	if len(r) < 2 {
		return 0
	}

	excess := stat.Mean(r, nil)*TradingDaysPerYear - riskFreeRate

	downside := make([]float64, 0, len(r))
	for _, x := range r {
		if x < target {
			downside = append(downside, x)
		}
	}
	if len(downside) == 0 {
		if excess > 0 {
			return math.Inf(1)
		}
		return 0
	}
	if len(downside) < 2 {
		return 0
	}

	downVol := stat.StdDev(downside, nil) * math.Sqrt(TradingDaysPerYear)
	if downVol == 0 || !isFinite(downVol) {
		return 0
	}
	s := excess / downVol
	if !isFinite(s) {
		return 0
	}
	return s
}
