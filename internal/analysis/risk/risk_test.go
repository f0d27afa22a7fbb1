package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/techlens/pkg/models"
)

// ── helpers ──

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func makeSeries(t *testing.T, ticker string, start time.Time, closes []float64) models.PriceSeries {
	t.Helper()
	bars := make([]models.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = models.OHLCV{Timestamp: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	s, err := models.NewPriceSeries(ticker, bars)
	require.NoError(t, err)
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// zigzag produces a deterministic, non-trivial price path.
func zigzag(n int) []float64 {
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		switch i % 4 {
		case 0:
			p *= 1.02
		case 1:
			p *= 0.97
		case 2:
			p *= 1.015
		case 3:
			p *= 0.99
		}
		out[i] = p
	}
	return out
}

// ── returns ──

func TestReturns(t *testing.T) {
	r := Returns([]float64{100, 110, 99})
	require.Len(t, r, 2)
	assert.InDelta(t, 0.10, r[0], 1e-12)
	assert.InDelta(t, -0.10, r[1], 1e-12)

	assert.Empty(t, Returns([]float64{100}))
	assert.Empty(t, Returns(nil))

	withZero := Returns([]float64{0, 10, 11})
	assert.True(t, math.IsNaN(withZero[0]), "return after a zero price is undefined")
	assert.InDelta(t, 0.10, withZero[1], 1e-12)
}

func TestAnnualReturn(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
	}{
		{"growth", []float64{100, 101, 103, 102, 110}},
		{"decline", []float64{50, 45, 40}},
		{"two points", []float64{10, 12}},
		{"zigzag", zigzag(300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.prices)
			want := math.Pow(tt.prices[n-1]/tt.prices[0], 252.0/float64(n)) - 1
			assert.InDelta(t, want, AnnualReturn(tt.prices), 1e-12)
		})
	}

	assert.Zero(t, AnnualReturn([]float64{100}))
	assert.Zero(t, AnnualReturn([]float64{0, 10}))
	assert.Zero(t, AnnualReturn(nil))
}

// ── volatility / ratios ──

func TestVolatility(t *testing.T) {
	r := []float64{0.01, -0.02, 0.03, math.NaN(), 0.0}
	daily := Volatility(r, false)
	// sample stdev of {0.01,-0.02,0.03,0}
	assert.InDelta(t, 0.0208166599946613, daily, 1e-12)
	assert.InDelta(t, daily*math.Sqrt(252), Volatility(r, true), 1e-12)

	assert.Zero(t, Volatility([]float64{0.05}, true))
	assert.Zero(t, Volatility([]float64{math.NaN(), 0.01}, true))
}

func TestSharpe(t *testing.T) {
	r := []float64{0.01, -0.005, 0.02, 0.0, 0.004}
	mean := (0.01 - 0.005 + 0.02 + 0.0 + 0.004) / 5
	want := (mean*252 - 0.04) / (Volatility(r, true))
	assert.InDelta(t, want, Sharpe(r, 0.04), 1e-12)

	assert.Zero(t, Sharpe([]float64{0.01, 0.01, 0.01}, 0.04), "zero volatility")
	assert.Zero(t, Sharpe([]float64{0.01}, 0.04))
}

func TestSortino(t *testing.T) {
	t.Run("no downside with positive excess is +Inf", func(t *testing.T) {
		assert.True(t, math.IsInf(Sortino([]float64{0.01, 0.02, 0.03}, 0.0, 0), 1))
	})
	t.Run("no downside with non-positive excess is 0", func(t *testing.T) {
		assert.Zero(t, Sortino([]float64{0.0001, 0.0001}, 0.5, 0))
	})
	t.Run("single downside observation is 0", func(t *testing.T) {
		assert.Zero(t, Sortino([]float64{0.02, -0.01, 0.03}, 0.0, 0))
	})
	t.Run("zero downside deviation is 0", func(t *testing.T) {
		assert.Zero(t, Sortino([]float64{0.05, -0.01, -0.01}, 0.0, 0))
	})
	t.Run("regular", func(t *testing.T) {
		r := []float64{0.02, -0.01, 0.03, -0.02, 0.01}
		mean := 0.03 / 5
		down := Volatility([]float64{-0.01, -0.02}, true)
		assert.InDelta(t, (mean*252-0.04)/down, Sortino(r, 0.04, 0), 1e-12)
	})
}

// ── drawdown ──

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, -0.5, MaxDrawdown([]float64{100, 120, 60, 90, 130}), 1e-12)
	assert.InDelta(t, -0.2, MaxDrawdown([]float64{100, 80, 90}), 1e-12, "first price is a peak")
	assert.Zero(t, MaxDrawdown([]float64{100}))
	assert.Zero(t, MaxDrawdown(nil))
}

func TestMaxDrawdownZeroIffNonDecreasing(t *testing.T) {
	cases := [][]float64{
		{1, 2, 3, 4},
		{5, 5, 5},
		{1, 1, 2, 2, 3},
		{1, 2, 1.999},
		{3, 2, 1},
		zigzag(50),
	}
	for _, p := range cases {
		nonDecreasing := true
		for i := 1; i < len(p); i++ {
			if p[i] < p[i-1] {
				nonDecreasing = false
			}
		}
		dd := MaxDrawdown(p)
		assert.LessOrEqual(t, dd, 0.0)
		assert.Equal(t, nonDecreasing, dd == 0, "prices %v", p)
	}
}

func TestRollingDrawdown(t *testing.T) {
	p := []float64{100, 90, 95, 80, 120, 110}
	got := RollingDrawdown(p, 3)
	require.Len(t, got, 4)
	assert.InDelta(t, -0.10, got[0], 1e-12)        // 100,90,95
	assert.InDelta(t, -0.1578947368, got[1], 1e-9) // 90,95,80
	assert.InDelta(t, -0.1578947368, got[2], 1e-9) // 95,80,120
	assert.InDelta(t, -0.0833333333, got[3], 1e-9) // 80,120,110

	assert.Empty(t, RollingDrawdown(p, 10))
	assert.Empty(t, RollingDrawdown(p, 1))
}

func TestRecoveryDays(t *testing.T) {
	dates := func(n int) []time.Time {
		out := make([]time.Time, n)
		for i := range out {
			out[i] = day0.AddDate(0, 0, i)
		}
		return out
	}

	recovered := []float64{100, 120, 60, 90, 125}
	assert.Equal(t, 2, RecoveryDays(recovered, dates(5)))

	notRecovered := []float64{100, 120, 60, 90, 110}
	assert.Equal(t, -1, RecoveryDays(notRecovered, dates(5)))

	assert.Zero(t, RecoveryDays([]float64{1, 2, 3}, dates(3)), "no drawdown")
	assert.Zero(t, RecoveryDays([]float64{1}, dates(1)))
}

// ── VaR / CVaR ──

func TestPercentileLinear(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1.0, percentile(sorted, 0), 1e-12)
	assert.InDelta(t, 3.0, percentile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 1.2, percentile(sorted, 0.05), 1e-12)
	assert.InDelta(t, 5.0, percentile(sorted, 1), 1e-12)
}

func TestVaRCVaR(t *testing.T) {
	r := []float64{-0.05, -0.03, -0.01, 0.0, 0.01, 0.02, 0.02, 0.03, 0.04, 0.05}
	v, c := VaRCVaR(r, 0.90, 1)
	// position 0.9 between -0.05 and -0.03
	assert.InDelta(t, -0.032, v, 1e-12)
	assert.InDelta(t, -0.05, c, 1e-12)
	assert.InDelta(t, v, VaR(r, 0.90), 1e-15)
	assert.InDelta(t, c, CVaR(r, 0.90), 1e-15)

	zero, zeroC := VaRCVaR([]float64{0.01}, 0.95, 1)
	assert.Zero(t, zero)
	assert.Zero(t, zeroC)

	bad, _ := VaRCVaR(r, 1.5, 1)
	assert.Zero(t, bad)
}

func TestCVaRNeverAboveVaR(t *testing.T) {
	series := [][]float64{
		Returns(zigzag(120)),
		{0.01, 0.02},
		{-0.01, -0.01, -0.01},
		{0.05, -0.2, 0.01, 0.0, -0.03},
	}
	for _, r := range series {
		for _, c := range DefaultConfidenceLevels {
			for _, hp := range []int{1, 5} {
				v, cv := VaRCVaR(r, c, hp)
				assert.LessOrEqual(t, cv, v, "c=%v hp=%d", c, hp)
			}
		}
	}
}

func TestHoldingPeriodAggregation(t *testing.T) {
	r := []float64{0.01, -0.02, 0.03, -0.04}
	assert.Equal(t, []float64{-0.01, 0.01, -0.01}, roundAll(rollingSum(r, 2)))

	// holding period longer than the history leaves nothing to measure
	v, c := VaRCVaR(r, 0.95, 10)
	assert.Zero(t, v)
	assert.Zero(t, c)
}

func roundAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Round(x*1e9) / 1e9
	}
	return out
}

// ── flat series end to end ──

func TestFlatSeriesIsAllZeros(t *testing.T) {
	prices := flat(60, 100)
	r := Returns(prices)

	assert.Zero(t, Volatility(r, true))
	assert.Zero(t, Sharpe(r, 0.0425))
	assert.Zero(t, Sortino(r, 0.0425, 0))
	assert.Zero(t, MaxDrawdown(prices))
	assert.Zero(t, VaR(r, 0.95))
	assert.Zero(t, CVaR(r, 0.95))
}

func TestIdempotence(t *testing.T) {
	prices := zigzag(200)
	r := Returns(prices)
	assert.Equal(t, AnnualReturn(prices), AnnualReturn(prices))
	assert.Equal(t, Volatility(r, true), Volatility(r, true))
	assert.Equal(t, Sharpe(r, 0.04), Sharpe(r, 0.04))
	assert.Equal(t, MaxDrawdown(prices), MaxDrawdown(prices))
	v1, c1 := VaRCVaR(r, 0.99, 1)
	v2, c2 := VaRCVaR(r, 0.99, 1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, c1, c2)
}
