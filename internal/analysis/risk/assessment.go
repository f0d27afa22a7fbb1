package risk

import (
	"math"

	"github.com/seenimoa/techlens/pkg/models"
)

// Assess turns annual volatility, 95% daily VaR and Sharpe into a
// qualitative risk level. Each input is scored (volatility and VaR 1..5,
// Sharpe 1..4, lower is safer) and the average picks the level.
func Assess(volatility, var95, sharpe float64) models.RiskLevel {
	avg := float64(volatilityScore(volatility)+varScore(var95)+sharpeScore(sharpe)) / 3
	switch {
	case avg < 2:
		return models.RiskLow
	case avg < 3:
		return models.RiskModerate
	case avg < 3.5:
		return models.RiskHigh
	default:
		return models.RiskVeryHigh
	}
}

func volatilityScore(vol float64) int {
	pct := vol * 100
	switch {
	case pct < 15:
		return 1
	case pct < 20:
		return 2
	case pct < 30:
		return 3
	case pct < 40:
		return 4
	default:
		return 5
	}
}

func varScore(v float64) int {
	pct := math.Abs(v) * 100
	switch {
	case pct < 2:
		return 1
	case pct < 3:
		return 2
	case pct < 4:
		return 3
	case pct < 5:
		return 4
	default:
		return 5
	}
}

func sharpeScore(s float64) int {
	switch {
	case s > 1:
		return 1
	case s > 0.5:
		return 2
	case s > 0:
		return 3
	default:
		return 4
	}
}
