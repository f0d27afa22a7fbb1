package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/techlens/internal/analysis/fundamental"
	"github.com/seenimoa/techlens/internal/evaluator"
	"github.com/seenimoa/techlens/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func sampleReport(ticker string, sharpe, vol float64, signal models.InvestmentSignal) models.CompanyReport {
	return models.CompanyReport{
		Stock: models.Stock{Ticker: ticker, Name: ticker + " Corp", Sector: "Semiconductors", MarketCap: 3.2e12},
		Risk: &models.RiskMetrics{
			Ticker:       ticker,
			Observations: 750,
			AnnualReturn: 0.42,
			Volatility:   vol,
			SharpeRatio:  sharpe,
			SortinoRatio: math.Inf(1),
			MaxDrawdown:  -0.31,
			RecoveryDays: -1,
			TailRisk: []models.TailRisk{
				{Confidence: 0.95, VaR: -0.031, CVaR: -0.045},
				{Confidence: 0.99, VaR: -0.052, CVaR: -0.066},
			},
			Beta:       1.7,
			BetaSource: models.BetaCalculated,
			Assessment: models.RiskHigh,
		},
		Evaluation: &models.Evaluation{
			Ticker: ticker,
			Scores: models.LensScores{Valuation: 40, Quality: 90, Growth: 95, FinancialHealth: 80, RiskMomentum: 55, Composite: 72.5},
			Signal: signal,
		},
		Recommendation: &models.Recommendation{
			Signal:     signal,
			Strengths:  []string{"Exceptional growth"},
			Weaknesses: []string{"Rich valuation"},
			Text:       "Strong fundamentals with premium pricing.",
		},
	}
}

func sampleResult() *evaluator.Result {
	return &evaluator.Result{
		Dashboard: models.Dashboard{
			RunID:        "run-1",
			GeneratedAt:  time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC),
			RiskFreeRate: 0.0425,
			Reports: []models.CompanyReport{
				sampleReport("NVDA", 1.4, 0.45, models.SignalBuy),
				sampleReport("MSFT", 0.7, 0.18, models.SignalHold),
				{Stock: models.Stock{Ticker: "AAPL"}, Err: "AAPL: ticker not found"},
			},
			Correlation: &models.CorrelationMatrix{
				Tickers: []string{"NVDA", "MSFT"},
				Values:  [][]float64{{1, 0.62}, {0.62, 1}},
			},
		},
		Peers: []fundamental.PeerEntry{
			{Ticker: "NVDA", Composite: 72.5, Signal: models.SignalBuy, Rank: 1},
			{Ticker: "MSFT", Composite: 72.5, Signal: models.SignalHold, Rank: 2},
		},
		Relative: map[string][]fundamental.RelativeMetric{
			"NVDA": {{Field: models.FieldPE, TargetValue: 35, PeerAvg: 22, PeerMedian: 22, Percentile: 0}},
		},
		Rolling:  map[string]float64{"NVDA": -0.12},
		Duration: 1500 * time.Millisecond,
	}
}

// ════════════════════════════════════════════════════════════════════
// Text
// ════════════════════════════════════════════════════════════════════

func TestGenerateText(t *testing.T) {
	out, err := GenerateText(sampleResult(), DefaultConfig())
	require.NoError(t, err)

	for _, want := range []string{
		"Tech Stock Fundamentals Dashboard",
		"2026-01-15 15:00:00 ET",
		"run-1",
		"4.25%",
		"RISK METRICS",
		"VaR 95%",
		"CVaR 99%",
		"-3.10%",
		"FIVE-LENS SCORES",
		"Risk & Momentum",
		"RETURN CORRELATION",
		"0.62",
		"PEER RANKING",
		"-12.00%",
		"NVDA vs peers",
		"pe_ratio",
		"NVDA Corp (NVDA): Buy [blue]",
		"$3.20T",
		"- Exceptional growth",
		"UNAVAILABLE",
		"AAPL: ticker not found",
		"not recovered",
		"∞",
	} {
		assert.Contains(t, out, want)
	}
}

func TestBenchmarkFlags(t *testing.T) {
	out, err := GenerateText(sampleResult(), Config{Sections: []Section{SectionRisk}})
	require.NoError(t, err)

	var nvda, msft string
	for _, l := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(strings.TrimSpace(l), "NVDA"):
			nvda = l
		case strings.HasPrefix(strings.TrimSpace(l), "MSFT"):
			msft = l
		}
	}
	require.NotEmpty(t, nvda)
	require.NotEmpty(t, msft)

	assert.Contains(t, nvda, "45.00% "+markFail, "volatility above 20%")
	assert.Contains(t, nvda, "1.40 "+markPass)
	assert.Contains(t, msft, "18.00% "+markPass)
	assert.Contains(t, msft, "0.70 "+markFail)
	assert.Contains(t, nvda, "1.70 (calculated)")

	assert.NotContains(t, out, "FIVE-LENS SCORES", "unselected sections are skipped")
	assert.NotContains(t, out, "RETURN CORRELATION")
}

func TestGenerateTextEmpty(t *testing.T) {
	res := &evaluator.Result{Dashboard: models.Dashboard{
		Reports: []models.CompanyReport{{Stock: models.Stock{Ticker: "TSLA"}, Err: "boom"}},
	}}
	out, err := GenerateText(res, Config{})
	require.NoError(t, err)
	assert.NotContains(t, out, "RISK METRICS")
	assert.Contains(t, out, "TSLA: boom")

	_, err = GenerateText(nil, Config{})
	assert.Error(t, err)
}

// ════════════════════════════════════════════════════════════════════
// YAML
// ════════════════════════════════════════════════════════════════════

func TestGenerateYAML(t *testing.T) {
	out, err := GenerateYAML(sampleResult())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	dash, ok := doc["dashboard"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-1", dash["run_id"])
	assert.Equal(t, 0.0425, dash["risk_free_rate"])

	reports, ok := dash["reports"].([]any)
	require.True(t, ok)
	require.Len(t, reports, 3)
	assert.Equal(t, "AAPL: ticker not found", reports[2].(map[string]any)["error"])

	assert.Contains(t, out, "sortino_ratio: .inf")
	assert.Contains(t, out, "duration: 1.5s")
	assert.Contains(t, out, "rolling_drawdown:")
}

func TestWriteFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatYAML, Config{}))
	assert.True(t, strings.HasPrefix(buf.String(), "dashboard:"))

	assert.Error(t, Write(&buf, sampleResult(), Format("pdf"), Config{}))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}

func TestConfLabel(t *testing.T) {
	assert.Equal(t, "95%", confLabel(0.95))
	assert.Equal(t, "90%", confLabel(0.90))
	assert.Equal(t, "97.5%", confLabel(0.975))
}
