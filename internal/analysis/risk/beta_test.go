package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seenimoa/techlens/pkg/models"
)

var testBetaTable = map[string]float64{
	"NVDA": 1.85,
	"MSFT": 0.90,
}

// scaledPath builds prices whose daily returns are k times those of base.
func scaledPath(base []float64, k float64) []float64 {
	r := Returns(base)
	out := make([]float64, len(base))
	out[0] = 50
	for i, x := range r {
		out[i+1] = out[i] * (1 + k*x)
	}
	return out
}

func TestBetaEstimatorCalculated(t *testing.T) {
	market := makeSeries(t, "^GSPC", day0, zigzag(80))
	stock := makeSeries(t, "NVDA", day0, scaledPath(zigzag(80), 1.5))

	e := NewBetaEstimator(BetaConfig{Table: testBetaTable})
	b, src := e.Estimate("NVDA", stock, market)
	assert.Equal(t, models.BetaCalculated, src)
	assert.InDelta(t, 1.5, b, 1e-4)
}

func TestBetaEstimatorFallbacks(t *testing.T) {
	e := NewBetaEstimator(BetaConfig{Table: testBetaTable})

	// 40 bars each, offset by 30 days: only 9 paired returns.
	market := makeSeries(t, "^GSPC", day0.AddDate(0, 0, 30), zigzag(40))
	nvda := makeSeries(t, "NVDA", day0, scaledPath(zigzag(40), 1.2))
	unknown := makeSeries(t, "ZZZZ", day0, scaledPath(zigzag(40), 1.2))

	tests := []struct {
		name    string
		ticker  string
		stock   models.PriceSeries
		market  models.PriceSeries
		want    float64
		wantSrc models.BetaSource
	}{
		{"short overlap uses table", "NVDA", nvda, market, 1.85, models.BetaLookup},
		{"table lookup ignores exchange suffix", "nvda.ns", nvda, market, 1.85, models.BetaLookup},
		{"short overlap unknown ticker uses default", "ZZZZ", unknown, market, 1.0, models.BetaDefault},
		{"empty market", "MSFT", nvda, models.PriceSeries{}, 0.90, models.BetaLookup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, src := e.Estimate(tt.ticker, tt.stock, tt.market)
			assert.Equal(t, tt.want, b)
			assert.Equal(t, tt.wantSrc, src)
		})
	}
}

func TestBetaEstimatorRejectsDegenerateEstimates(t *testing.T) {
	e := NewBetaEstimator(BetaConfig{Table: testBetaTable})

	t.Run("flat market has zero variance", func(t *testing.T) {
		market := makeSeries(t, "^GSPC", day0, flat(80, 4000))
		stock := makeSeries(t, "NVDA", day0, zigzag(80))
		b, src := e.Estimate("NVDA", stock, market)
		assert.Equal(t, 1.85, b)
		assert.Equal(t, models.BetaLookup, src)
	})

	t.Run("implausible magnitude", func(t *testing.T) {
		market := makeSeries(t, "^GSPC", day0, zigzag(80))
		stock := makeSeries(t, "AAPL", day0, scaledPath(zigzag(80), 6))
		b, src := e.Estimate("AAPL", stock, market)
		assert.Equal(t, 1.0, b)
		assert.Equal(t, models.BetaDefault, src)
	})
}

func TestCovarianceBeta(t *testing.T) {
	m := Returns(zigzag(40))
	s := make([]float64, len(m))
	for i, x := range m {
		s[i] = 0.8 * x
	}
	b, ok := CovarianceBeta(s, m, 30, 5)
	assert.True(t, ok)
	assert.InDelta(t, 0.8, b, 1e-4)

	_, ok = CovarianceBeta(s[:10], m[:10], 30, 5)
	assert.False(t, ok, "too few observations")

	_, ok = CovarianceBeta(s, m[:20], 10, 5)
	assert.False(t, ok, "mismatched lengths")
}

func TestBetaEstimatorDefaults(t *testing.T) {
	e := NewBetaEstimator(BetaConfig{})
	b, src := e.Lookup("NVDA")
	assert.Equal(t, DefaultBeta, b)
	assert.Equal(t, models.BetaDefault, src)
}

func TestBetaTableIsCopied(t *testing.T) {
	table := map[string]float64{"NVDA": 1.85}
	e := NewBetaEstimator(BetaConfig{Table: table})
	table["NVDA"] = 3.0

	b, _ := e.Lookup("NVDA")
	assert.Equal(t, 1.85, b)
}
