package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/techlens/internal/analysis/fivelens"
	"github.com/seenimoa/techlens/internal/analysis/risk"
	"github.com/seenimoa/techlens/internal/datasource"
	"github.com/seenimoa/techlens/pkg/models"
)

var fixtureEnd = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

// writePrices writes n daily closes ending at fixtureEnd, produced by
// compounding ret(i).
func writePrices(t *testing.T, dir, ticker string, n int, ret func(i int) float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	px := 100.0
	start := fixtureEnd.AddDate(0, 0, -(n - 1))
	for i := 0; i < n; i++ {
		if i > 0 {
			px *= 1 + ret(i)
		}
		fmt.Fprintf(&b, "%s,%.6f,%.6f,%.6f,%.6f,1000\n", start.AddDate(0, 0, i).Format(time.DateOnly), px, px, px, px)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prices", ticker+".csv"), []byte(b.String()), 0o644))
}

func marketReturn(i int) float64 { return 0.01 * math.Sin(float64(i)*0.7) }

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prices"), 0o755))

	writePrices(t, dir, "GSPC", 400, marketReturn)
	writePrices(t, dir, "NVDA", 400, func(i int) float64 { return 1.5*marketReturn(i) + 0.001 + 0.002*math.Cos(float64(i)*1.3) })
	writePrices(t, dir, "MSFT", 400, func(i int) float64 { return 0.8*marketReturn(i) + 0.0005 })

	fundamentals := `NVDA:
  name: NVIDIA Corporation
  sector: Technology
  fundamentals:
    trailingPE: 35
    returnOnEquity: 1.19
    profitMargins: 0.55
    revenueGrowth: 1.22
    debtToEquity: 17.2
    currentRatio: 4.1
MSFT:
  name: Microsoft Corporation
  sector: Technology
  fundamentals:
    trailingPE: 22
    returnOnEquity: 0.35
    profitMargins: 0.36
    revenueGrowth: 0.15
    debtToEquity: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, datasource.FundamentalsFile), []byte(fundamentals), 0o644))
	return dir
}

// failingRates always errors.
type failingRates struct{}

func (failingRates) Name() string { return "broken" }
func (failingRates) RiskFreeRate(context.Context) (float64, error) {
	return 0, errors.New("offline")
}

func newService(t *testing.T, rates datasource.RateSource) *Service {
	t.Helper()
	agg := datasource.NewAggregator(datasource.NewDirSource(fixtureDir(t)), zerolog.Nop())
	engine := risk.NewEngine(risk.DefaultConfig())
	svc := New(agg, rates, engine, fivelens.MustNew(fivelens.DefaultConfig()), Config{
		MarketTicker:  "^GSPC",
		HistoryPeriod: "2y",
		RiskFreeRate:  0.0425,
		RollingWindow: 60,
		Companies: map[string]models.Stock{
			"NVDA": {Ticker: "NVDA", Name: "ignored", Sector: "Semiconductors"},
			"AAPL": {Ticker: "AAPL", Name: "Apple Inc.", Sector: "Consumer Electronics"},
		},
	}, zerolog.Nop())
	svc.now = func() time.Time { return fixtureEnd.Add(20 * time.Hour) }
	return svc
}

func TestRun(t *testing.T) {
	svc := newService(t, datasource.StaticRate(0.05))

	res, err := svc.Run(context.Background(), []string{"nvda", "MSFT", "AAPL"})
	require.NoError(t, err)

	d := res.Dashboard
	assert.NotEmpty(t, d.RunID)
	assert.Equal(t, 0.05, d.RiskFreeRate)
	require.Len(t, d.Reports, 3)

	nvda := d.Reports[0]
	require.True(t, nvda.OK(), nvda.Err)
	assert.Equal(t, "NVIDIA Corporation", nvda.Stock.Name, "source name kept")
	assert.Equal(t, "Semiconductors", nvda.Stock.Sector, "registry sector wins")
	assert.Equal(t, 400, nvda.Risk.Observations)
	assert.Equal(t, models.BetaCalculated, nvda.Risk.BetaSource)
	assert.InDelta(t, 1.5, nvda.Risk.Beta, 0.2)
	assert.Len(t, nvda.Risk.TailRisk, 3)
	assert.NotEmpty(t, nvda.Evaluation.Signal)
	assert.Equal(t, nvda.Evaluation.Signal, nvda.Recommendation.Signal)
	assert.Equal(t, fivelens.Signal(nvda.Evaluation.Scores.Composite), nvda.Evaluation.Signal)

	assert.True(t, d.Reports[1].OK())

	aapl := d.Reports[2]
	assert.False(t, aapl.OK())
	assert.Contains(t, aapl.Err, "ticker not found")
	assert.Equal(t, "Apple Inc.", aapl.Stock.Name, "registry fills failed reports")

	require.NotNil(t, d.Correlation)
	assert.Equal(t, []string{"NVDA", "MSFT"}, d.Correlation.Tickers)
	c, ok := d.Correlation.At("NVDA", "MSFT")
	require.True(t, ok)
	assert.Greater(t, c, 0.8)

	require.Len(t, res.Peers, 2)
	assert.Equal(t, 1, res.Peers[0].Rank)
	assert.Contains(t, res.Relative, "NVDA")
	assert.Contains(t, res.Rolling, "MSFT")
	assert.LessOrEqual(t, res.Rolling["MSFT"], 0.0)
}

func TestRunRateFallback(t *testing.T) {
	svc := newService(t, failingRates{})
	res, err := svc.Run(context.Background(), []string{"MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 0.0425, res.Dashboard.RiskFreeRate)
	assert.Nil(t, res.Dashboard.Correlation, "one series has no matrix")
}

func TestRunWithoutBenchmark(t *testing.T) {
	svc := newService(t, nil)
	svc.cfg.MarketTicker = "^MISSING"

	res, err := svc.Run(context.Background(), []string{"NVDA"})
	require.NoError(t, err)
	require.True(t, res.Dashboard.Reports[0].OK())
	assert.Equal(t, models.BetaDefault, res.Dashboard.Reports[0].Risk.BetaSource, "no benchmark and no lookup table")
}

func TestRunErrors(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Run(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrNoTickers)

	svc.cfg.HistoryPeriod = "forever"
	_, err = svc.Run(context.Background(), []string{"NVDA"})
	assert.Error(t, err)

	svc.cfg.HistoryPeriod = "1y"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Run(ctx, []string{"NVDA"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateDeterministic(t *testing.T) {
	svc := newService(t, nil)
	snap := svc.agg.FetchSnapshot(context.Background(), "MSFT", time.Time{}, time.Time{})
	require.NoError(t, snap.Err)

	a, fa := svc.Evaluate(snap, models.PriceSeries{}, 0.04)
	b, fb := svc.Evaluate(snap, models.PriceSeries{}, 0.04)
	assert.Equal(t, a, b)
	assert.Equal(t, fa, fb)
}
