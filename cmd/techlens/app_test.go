package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/techlens/internal/config"
	"github.com/seenimoa/techlens/internal/datasource"
	"github.com/seenimoa/techlens/pkg/models"
)

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	c, err := config.LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	return c
}

func TestRiskConfig(t *testing.T) {
	c := loadConfig(t, `
analysis:
  confidence_levels: [0.95, 0.99]
  holding_period: 5
  min_beta_observations: 60
companies:
  tsla:
    name: Tesla
    sector: Automotive
    beta: 2.1
`)
	rc := riskConfig(c)
	assert.Equal(t, []float64{0.95, 0.99}, rc.ConfidenceLevels)
	assert.Equal(t, 5, rc.HoldingPeriod)
	assert.Equal(t, 60, rc.Beta.MinObservations)
	assert.Equal(t, 5.0, rc.Beta.MaxAbsBeta)
	assert.Equal(t, 2.1, rc.Beta.Table["TSLA"])
	assert.Equal(t, 1.85, rc.Beta.Table["NVDA"], "defaults merge with the file")
}

func TestScoringConfig(t *testing.T) {
	c := loadConfig(t, `
scoring:
  weights:
    growth: 0.40
  sector_weights:
    Semiconductors:
      growth: 0.30
      valuation: 0.15
`)
	sc := scoringConfig(c)
	assert.Equal(t, 0.40, sc.Weights[models.LensGrowth])
	assert.Equal(t, 0.25, sc.Weights[models.LensQuality])
	require.Contains(t, sc.SectorWeights, "semiconductors")
	assert.Equal(t, 0.30, sc.SectorWeights["semiconductors"][models.LensGrowth])
}

func TestRateSource(t *testing.T) {
	c := loadConfig(t, "rates:\n  source: static\n")
	rs := rateSource(c)
	rf, err := rs.RiskFreeRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0425, rf)

	c = loadConfig(t, "rates:\n  source: fred\n  fred_series: DGS3MO\n")
	assert.Equal(t, "FRED DGS3MO", rateSource(c).Name())
}

func TestNewApp(t *testing.T) {
	c := loadConfig(t, "data:\n  source: csv\n  fallback: yahoo\n")
	a, err := newApp(c, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, a.yahoo, "fallback source is built")
	assert.NotNil(t, a.svc)

	assert.Equal(t, []string{"NVDA", "MSFT", "AAPL", "GOOGL", "AMZN"}, a.tickers(nil))
	assert.Equal(t, []string{"TSLA"}, a.tickers([]string{"TSLA"}))

	ds, err := a.source(config.SourceCSV)
	require.NoError(t, err)
	assert.IsType(t, &datasource.DirSource{}, ds)

	_, err = a.source("bloomberg")
	assert.Error(t, err)
}

func TestEvaluateCommandCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prices"), 0o755))
	prices := "Date,Close\n2026-01-02,100\n2026-01-05,101\n2026-01-06,99\n2026-01-07,102\n2026-01-08,103\n"
	for _, tk := range []string{"GSPC", "NVDA", "MSFT"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "prices", tk+".csv"), []byte(prices), 0o644))
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data:\n  source: csv\n  dir: "+dir+"\nanalysis:\n  history_period: 50y\nlogging:\n  level: disabled\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"signal", "--config", cfgPath, "NVDA", "MSFT"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "FIVE-LENS SCORES")
	assert.Contains(t, out.String(), "PEER RANKING")
	assert.NotContains(t, out.String(), "RISK METRICS")
}
