package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/techlens/internal/analysis/fundamental"
	"github.com/seenimoa/techlens/pkg/models"
	"github.com/seenimoa/techlens/pkg/utils"
)

// DefaultConcurrentFetches bounds how many tickers are fetched at once.
const DefaultConcurrentFetches = 5

// Snapshot is everything fetched for one ticker in one run. It is built once
// and never mutated afterwards. Err is set when the price history could not
// be fetched; profile and fundamentals failures are partial and only logged.
type Snapshot struct {
	Stock     models.Stock
	Series    models.PriceSeries
	Raw       fundamental.Raw
	FetchedAt time.Time
	Err       error
}

// Aggregator fetches ticker snapshots from a primary source, falling back to
// a secondary one per call when configured.
type Aggregator struct {
	primary  DataSource
	fallback DataSource
	limit    int
	log      zerolog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithFallback sets a source tried when the primary fails.
func WithFallback(ds DataSource) AggregatorOption {
	return func(a *Aggregator) { a.fallback = ds }
}

// WithConcurrency sets the number of tickers fetched in parallel.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// NewAggregator creates an aggregator over primary.
func NewAggregator(primary DataSource, log zerolog.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		primary: primary,
		limit:   DefaultConcurrentFetches,
		log:     log.With().Str("component", "datasource").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources returns the configured sources in priority order.
func (a *Aggregator) Sources() []DataSource {
	if a.fallback == nil {
		return []DataSource{a.primary}
	}
	return []DataSource{a.primary, a.fallback}
}

// FetchHistory returns daily bars, trying the primary source first.
func (a *Aggregator) FetchHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	series, err := a.primary.GetHistory(ctx, ticker, from, to)
	if err == nil && series.Len() > 0 {
		return series, nil
	}
	if a.fallback == nil || ctx.Err() != nil {
		return models.PriceSeries{}, fmt.Errorf("history unavailable for %s: %w", ticker, err)
	}

	a.log.Debug().Err(err).Str("ticker", ticker).Str("fallback", a.fallback.Name()).Msg("primary history failed")
	series, ferr := a.fallback.GetHistory(ctx, ticker, from, to)
	if ferr != nil {
		return models.PriceSeries{}, fmt.Errorf("history unavailable for %s: %w", ticker, errors.Join(err, ferr))
	}
	return series, nil
}

// FetchSnapshot fetches profile, history and fundamentals for one ticker
// concurrently.
func (a *Aggregator) FetchSnapshot(ctx context.Context, ticker string, from, to time.Time) Snapshot {
	symbol := utils.NormalizeTicker(ticker)
	snap := Snapshot{
		Stock:     models.Stock{Ticker: symbol},
		FetchedAt: time.Now(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	// 1. Price history, the only required piece.
	g.Go(func() error {
		series, err := a.FetchHistory(gctx, symbol, from, to)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			snap.Err = err
			return nil
		}
		snap.Series = series
		return nil
	})

	// 2. Company profile.
	g.Go(func() error {
		stock, err := withFallback(gctx, a, func(ds DataSource) (models.Stock, error) {
			return ds.GetProfile(gctx, symbol)
		})
		if err != nil {
			a.log.Warn().Err(err).Str("ticker", symbol).Msg("profile unavailable")
			return nil // non-fatal
		}
		stock.Ticker = symbol
		mu.Lock()
		snap.Stock = stock
		mu.Unlock()
		return nil
	})

	// 3. Fundamentals.
	g.Go(func() error {
		raw, err := withFallback(gctx, a, func(ds DataSource) (fundamental.Raw, error) {
			return ds.GetFundamentals(gctx, symbol)
		})
		if err != nil {
			a.log.Warn().Err(err).Str("ticker", symbol).Msg("fundamentals unavailable")
			return nil
		}
		mu.Lock()
		snap.Raw = raw
		mu.Unlock()
		return nil
	})

	_ = g.Wait()
	if snap.Raw == nil {
		snap.Raw = fundamental.Raw{}
	}
	return snap
}

// FetchAll fetches a snapshot per ticker with bounded parallelism. The result
// is ordered like tickers. Only context cancellation is returned as an error;
// per-ticker failures land in Snapshot.Err.
func (a *Aggregator) FetchAll(ctx context.Context, tickers []string, from, to time.Time) ([]Snapshot, error) {
	snaps := make([]Snapshot, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i, t := range tickers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snaps[i] = a.FetchSnapshot(gctx, t, from, to)
			if snaps[i].Err != nil {
				a.log.Warn().Err(snaps[i].Err).Str("ticker", snaps[i].Stock.Ticker).Msg("fetch failed")
			} else {
				a.log.Debug().Str("ticker", snaps[i].Stock.Ticker).Int("bars", snaps[i].Series.Len()).Msg("fetched")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snaps, err
	}
	return snaps, nil
}

func withFallback[T any](ctx context.Context, a *Aggregator, call func(DataSource) (T, error)) (T, error) {
	v, err := call(a.primary)
	if err == nil || a.fallback == nil || ctx.Err() != nil {
		return v, err
	}
	v, ferr := call(a.fallback)
	if ferr != nil {
		var zero T
		return zero, errors.Join(err, ferr)
	}
	return v, nil
}
