// Package evaluator runs one full dashboard pass: it fetches an immutable
// snapshot per ticker, evaluates the snapshots in parallel through the risk
// engine and the five-lens framework, and assembles the results.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/techlens/internal/analysis/fivelens"
	"github.com/seenimoa/techlens/internal/analysis/fundamental"
	"github.com/seenimoa/techlens/internal/analysis/risk"
	"github.com/seenimoa/techlens/internal/datasource"
	"github.com/seenimoa/techlens/pkg/models"
	"github.com/seenimoa/techlens/pkg/utils"
)

// ErrNoTickers is returned when a run is asked to evaluate nothing.
var ErrNoTickers = errors.New("no tickers to evaluate")

// Config holds the run parameters.
type Config struct {
	MarketTicker  string                  // benchmark for beta, e.g. ^GSPC
	HistoryPeriod string                  // lookback such as "3y"
	RiskFreeRate  float64                 // used when the rate source fails
	RollingWindow int                     // trading days for the rolling drawdown
	Companies     map[string]models.Stock // registry metadata, see withRegistry
}

// Result is one evaluation run.
type Result struct {
	Dashboard models.Dashboard                        `json:"dashboard" yaml:"dashboard"`
	Peers     []fundamental.PeerEntry                 `json:"peers,omitempty" yaml:"peers,omitempty"`
	Relative  map[string][]fundamental.RelativeMetric `json:"relative,omitempty" yaml:"relative,omitempty"`
	Rolling   map[string]float64                      `json:"rolling_drawdown,omitempty" yaml:"rolling_drawdown,omitempty"` // latest window
	Duration  time.Duration                           `json:"duration" yaml:"duration"`
}

// Service evaluates tickers end to end. It is safe for concurrent use; each
// Run works on its own snapshots.
type Service struct {
	agg       *datasource.Aggregator
	rates     datasource.RateSource
	engine    *risk.Engine
	framework *fivelens.Framework
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a Service. A nil rate source uses cfg.RiskFreeRate.
func New(agg *datasource.Aggregator, rates datasource.RateSource, engine *risk.Engine, framework *fivelens.Framework, cfg Config, log zerolog.Logger) *Service {
	if rates == nil {
		rates = datasource.StaticRate(cfg.RiskFreeRate)
	}
	if cfg.HistoryPeriod == "" {
		cfg.HistoryPeriod = "3y"
	}
	if cfg.RollingWindow < 2 {
		cfg.RollingWindow = risk.TradingDaysPerYear
	}
	return &Service{
		agg:       agg,
		rates:     rates,
		engine:    engine,
		framework: framework,
		cfg:       cfg,
		log:       log.With().Str("component", "evaluator").Logger(),
		now:       time.Now,
	}
}

// Run fetches and evaluates tickers. Per-ticker failures are recorded in the
// matching CompanyReport; only cancellation and bad arguments fail the run.
func (s *Service) Run(ctx context.Context, tickers []string) (*Result, error) {
	start := s.now()
	tickers = utils.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}

	from, err := datasource.ParsePeriod(s.cfg.HistoryPeriod, start)
	if err != nil {
		return nil, err
	}

	rf := s.riskFreeRate(ctx)

	// Phase 1: fetch benchmark and companies concurrently.
	var (
		market models.PriceSeries
		snaps  []datasource.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.cfg.MarketTicker == "" {
			return nil
		}
		m, err := s.agg.FetchHistory(gctx, s.cfg.MarketTicker, from, start)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			s.log.Warn().Err(err).Str("market", s.cfg.MarketTicker).Msg("benchmark unavailable, beta falls back to lookup")
			return nil // non-fatal
		}
		market = m
		return nil
	})
	g.Go(func() error {
		var err error
		snaps, err = s.agg.FetchAll(gctx, tickers, from, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// Phase 2: evaluate snapshots in parallel. The core is pure, so the only
	// shared state is the pre-sized output slices.
	reports := make([]models.CompanyReport, len(snaps))
	funds := make([]models.Fundamentals, len(snaps))
	eg := new(errgroup.Group)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range snaps {
		eg.Go(func() error {
			reports[i], funds[i] = s.Evaluate(snaps[i], market, rf)
			return nil
		})
	}
	_ = eg.Wait()

	// Phase 3: cross-company views.
	res := &Result{
		Dashboard: models.Dashboard{
			RunID:        uuid.NewString(),
			GeneratedAt:  start,
			RiskFreeRate: rf,
			Reports:      reports,
		},
		Relative: make(map[string][]fundamental.RelativeMetric),
		Rolling:  make(map[string]float64),
	}

	var (
		series []models.PriceSeries
		evals  []models.Evaluation
	)
	for i, r := range reports {
		if !r.OK() {
			continue
		}
		series = append(series, snaps[i].Series)
		evals = append(evals, *r.Evaluation)

		if dd := risk.RollingDrawdown(snaps[i].Series.Closes(), s.cfg.RollingWindow); len(dd) > 0 {
			res.Rolling[r.Stock.Ticker] = dd[len(dd)-1]
		}

		peers := make([]models.Fundamentals, 0, len(reports)-1)
		for j := range reports {
			if j != i && reports[j].OK() {
				peers = append(peers, funds[j])
			}
		}
		if rel := fundamental.RelativeMetrics(funds[i], peers); len(rel) > 0 {
			res.Relative[r.Stock.Ticker] = rel
		}
	}
	if len(series) >= 2 {
		cm := risk.CorrelationMatrix(series)
		res.Dashboard.Correlation = &cm
	}
	res.Peers = fundamental.RankPeers(evals)
	res.Duration = s.now().Sub(start)

	s.log.Info().
		Str("run_id", res.Dashboard.RunID).
		Int("tickers", len(tickers)).
		Int("evaluated", len(evals)).
		Float64("risk_free_rate", rf).
		Dur("duration", res.Duration).
		Msg("evaluation complete")

	return res, nil
}

// Evaluate turns one snapshot into a company report. It returns the
// normalised fundamentals alongside for peer comparison.
func (s *Service) Evaluate(snap datasource.Snapshot, market models.PriceSeries, rf float64) (models.CompanyReport, models.Fundamentals) {
	stock := s.withRegistry(snap.Stock)
	report := models.CompanyReport{Stock: stock}

	if snap.Err != nil {
		report.Err = snap.Err.Error()
		return report, nil
	}

	metrics := s.engine.Summarize(snap.Series, market, rf)
	fund := fundamental.Normalize(snap.Raw, snap.Series.Closes())
	eval := s.framework.Evaluate(stock.Ticker, stock.Sector, fund, &metrics)
	rec := fivelens.Recommend(eval.Scores)

	s.log.Debug().
		Str("ticker", stock.Ticker).
		Float64("beta", metrics.Beta).
		Str("beta_source", string(metrics.BetaSource)).
		Int("fundamentals", len(fund)).
		Float64("composite", eval.Scores.Composite).
		Str("signal", string(eval.Signal)).
		Msg("evaluated")

	report.Risk = &metrics
	report.Evaluation = &eval
	report.Recommendation = &rec
	return report, fund
}

func (s *Service) riskFreeRate(ctx context.Context) float64 {
	rf, err := s.rates.RiskFreeRate(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("source", s.rates.Name()).Float64("fallback", s.cfg.RiskFreeRate).Msg("risk-free rate unavailable")
		return s.cfg.RiskFreeRate
	}
	return rf
}

// withRegistry applies the configured registry. A registry sector wins over
// the provider's, which is usually a broad bucket such as "Technology";
// name and market cap only fill gaps.
func (s *Service) withRegistry(stock models.Stock) models.Stock {
	reg, ok := s.cfg.Companies[stock.Ticker]
	if !ok {
		return stock
	}
	if stock.Name == "" {
		stock.Name = reg.Name
	}
	if reg.Sector != "" {
		stock.Sector = reg.Sector
	}
	if stock.MarketCap == 0 {
		stock.MarketCap = reg.MarketCap
	}
	return stock
}
