package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/seenimoa/techlens/internal/analysis/fivelens"
	"github.com/seenimoa/techlens/internal/analysis/risk"
	"github.com/seenimoa/techlens/internal/config"
	"github.com/seenimoa/techlens/internal/datasource"
	"github.com/seenimoa/techlens/internal/evaluator"
	"github.com/seenimoa/techlens/pkg/models"
)

// app bundles the services a command needs, wired from one Config.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	svc   *evaluator.Service
	yahoo *datasource.YFinance // nil unless a Yahoo source is configured
}

func newApp(c *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: c, log: log}

	primary, err := a.source(c.Data.Source)
	if err != nil {
		return nil, err
	}
	opts := []datasource.AggregatorOption{datasource.WithConcurrency(c.Analysis.ConcurrentFetches)}
	if c.Data.Fallback != "" && c.Data.Fallback != c.Data.Source {
		fb, err := a.source(c.Data.Fallback)
		if err != nil {
			return nil, err
		}
		opts = append(opts, datasource.WithFallback(fb))
	}
	agg := datasource.NewAggregator(primary, log, opts...)

	framework, err := fivelens.New(scoringConfig(c))
	if err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}

	a.svc = evaluator.New(agg, rateSource(c), risk.NewEngine(riskConfig(c)), framework, evaluator.Config{
		MarketTicker:  c.Data.MarketTicker,
		HistoryPeriod: c.Analysis.HistoryPeriod,
		RiskFreeRate:  c.Analysis.RiskFreeRate,
		RollingWindow: c.Analysis.RollingWindow,
		Companies:     registry(c),
	}, log)
	return a, nil
}

// source builds the named data source. Yahoo sources share one client so the
// watch loop can flush a single cache.
func (a *app) source(name string) (datasource.DataSource, error) {
	switch name {
	case config.SourceCSV:
		return datasource.NewDirSource(a.cfg.Data.Dir), nil
	case config.SourceYahoo:
		if a.yahoo == nil {
			a.yahoo = datasource.NewYFinance(
				datasource.WithBaseURL(a.cfg.Data.YahooBaseURL),
				datasource.WithRateLimit(a.cfg.Data.RequestsPerSecond),
				datasource.WithCacheTTL(a.cfg.Data.CacheTTL),
			)
		}
		return a.yahoo, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", name)
	}
}

func rateSource(c *config.Config) datasource.RateSource {
	if c.Rates.Source == config.SourceFRED {
		var opts []datasource.FREDOption
		if c.Rates.FREDAPIKey != "" {
			opts = append(opts, datasource.WithFREDAPIKey(c.Rates.FREDAPIKey))
		}
		return datasource.NewFRED(c.Rates.FREDSeries, opts...)
	}
	return datasource.StaticRate(c.Analysis.RiskFreeRate)
}

func riskConfig(c *config.Config) risk.Config {
	rc := risk.DefaultConfig()
	if len(c.Analysis.ConfidenceLevels) > 0 {
		rc.ConfidenceLevels = c.Analysis.ConfidenceLevels
	}
	rc.HoldingPeriod = c.Analysis.HoldingPeriod
	if c.Analysis.MinBetaObservations > 0 {
		rc.Beta.MinObservations = c.Analysis.MinBetaObservations
	}
	if c.Analysis.MaxAbsBeta > 0 {
		rc.Beta.MaxAbsBeta = c.Analysis.MaxAbsBeta
	}
	if c.Analysis.DefaultBeta != 0 {
		rc.Beta.Default = c.Analysis.DefaultBeta
	}
	rc.Beta.Table = c.BetaTable()
	return rc
}

func scoringConfig(c *config.Config) fivelens.Config {
	sc := fivelens.DefaultConfig()
	if len(c.Scoring.Weights) > 0 {
		sc.Weights = sc.Weights.Merge(toWeights(c.Scoring.Weights))
	}
	if len(c.Scoring.SectorWeights) > 0 {
		sc.SectorWeights = make(map[string]fivelens.Weights, len(c.Scoring.SectorWeights))
		for sector, w := range c.Scoring.SectorWeights {
			sc.SectorWeights[sector] = toWeights(w)
		}
	}
	return sc
}

func toWeights(m map[string]float64) fivelens.Weights {
	w := make(fivelens.Weights, len(m))
	for k, v := range m {
		w[models.Lens(k)] = v
	}
	return w
}

func registry(c *config.Config) map[string]models.Stock {
	out := make(map[string]models.Stock, len(c.Companies))
	for t, cc := range c.Companies {
		out[t] = models.Stock{Ticker: t, Name: cc.Name, Sector: cc.Sector}
	}
	return out
}

// tickers returns args when given, otherwise the configured basket.
func (a *app) tickers(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return a.cfg.Analysis.Tickers
}
