package risk

import (
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/techlens/pkg/models"
)

// CorrelationMatrix computes the Pearson correlation of daily returns for
// every pair of series. Each pair is aligned on its own common dates. The
// diagonal is 1; a pair with fewer than two common returns or a zero-variance
// leg gets 0.
func CorrelationMatrix(series []models.PriceSeries) models.CorrelationMatrix {
	n := len(series)
	m := models.CorrelationMatrix{
		Tickers: make([]string, n),
		Values:  make([][]float64, n),
	}
	for i := range series {
		m.Tickers[i] = series[i].Ticker
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := Correlation(series[i], series[j])
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

// Correlation is the Pearson correlation of the date-aligned daily returns
// of a and b, or 0 when it is undefined.
func Correlation(a, b models.PriceSeries) float64 {
	x, y := AlignedReturns(a, b)
	if len(x) < 2 {
		return 0
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if !isFinite(c) {
		return 0
	}
	return c
}
