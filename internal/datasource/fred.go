package datasource

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultFREDSeries is the 10-year Treasury constant-maturity yield.
const DefaultFREDSeries = "DGS10"

const (
	defaultFREDAPIURL   = "https://api.stlouisfed.org/fred"
	defaultFREDGraphURL = "https://fred.stlouisfed.org/graph"
)

// ErrNoObservations is returned when a FRED series has no usable value.
var ErrNoObservations = errors.New("no observations in series")

// FRED reads the risk-free rate from a FRED yield series. With an API key it
// uses the observations JSON API; without one it falls back to the public
// fredgraph CSV download. Yields are published in percent and returned as
// decimals.
type FRED struct {
	series   string
	apiKey   string
	apiURL   string
	graphURL string
	client   *http.Client
	cache    *Cache
	limiter  *rate.Limiter
}

// FREDOption configures a FRED source.
type FREDOption func(*FRED)

// WithFREDAPIKey enables the JSON observations API.
func WithFREDAPIKey(key string) FREDOption {
	return func(f *FRED) { f.apiKey = key }
}

// WithFREDBaseURLs overrides the API and fredgraph hosts.
func WithFREDBaseURLs(apiURL, graphURL string) FREDOption {
	return func(f *FRED) {
		f.apiURL = strings.TrimRight(apiURL, "/")
		f.graphURL = strings.TrimRight(graphURL, "/")
	}
}

// WithFREDHTTPClient sets the HTTP client.
func WithFREDHTTPClient(c *http.Client) FREDOption {
	return func(f *FRED) { f.client = c }
}

// NewFRED creates a rate source for series (DGS10 when empty).
func NewFRED(series string, opts ...FREDOption) *FRED {
	if series == "" {
		series = DefaultFREDSeries
	}
	f := &FRED{
		series:   series,
		apiURL:   defaultFREDAPIURL,
		graphURL: defaultFREDGraphURL,
		client:   DefaultHTTPClient,
		cache:    NewCache(6 * time.Hour),
		limiter:  rate.NewLimiter(rate.Limit(2), 2),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the source name.
func (f *FRED) Name() string { return "FRED " + f.series }

// RiskFreeRate returns the latest observation as a decimal (4.25% is 0.0425).
func (f *FRED) RiskFreeRate(ctx context.Context) (float64, error) {
	if cached, ok := f.cache.Get(f.series); ok {
		return cached.(float64), nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	var (
		pct float64
		err error
	)
	if f.apiKey != "" {
		pct, err = f.latestFromAPI(ctx)
	} else {
		pct, err = f.latestFromCSV(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("fred %s: %w", f.series, err)
	}

	r := pct / 100
	f.cache.Set(f.series, r)
	return r, nil
}

type fredObservationsResponse struct {
	Observations []fredObservation `json:"observations"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

func (f *FRED) latestFromAPI(ctx context.Context) (float64, error) {
	q := url.Values{}
	q.Set("series_id", f.series)
	q.Set("api_key", f.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", "10")

	body, err := doGet(ctx, f.client, f.apiURL+"/series/observations?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	var resp fredObservationsResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return 0, fmt.Errorf("parse observations: %w", err)
	}

	// newest first
	for _, o := range resp.Observations {
		if v, ok := parseFredValue(o.Value); ok {
			return v, nil
		}
	}
	return 0, ErrNoObservations
}

func (f *FRED) latestFromCSV(ctx context.Context) (float64, error) {
	body, err := doGet(ctx, f.client, f.graphURL+"/fredgraph.csv?id="+url.QueryEscape(f.series), nil)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	r := csv.NewReader(body)
	if _, err := r.Read(); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	latest, found := 0.0, false
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		if v, ok := parseFredValue(rec[1]); ok {
			latest, found = v, true
		}
	}
	if !found {
		return 0, ErrNoObservations
	}
	return latest, nil
}

// parseFredValue parses an observation; FRED marks missing values with ".".
func parseFredValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StaticRate is a RateSource that always returns the configured rate.
type StaticRate float64

// Name returns the source name.
func (StaticRate) Name() string { return "static" }

// RiskFreeRate returns the configured rate.
func (s StaticRate) RiskFreeRate(context.Context) (float64, error) { return float64(s), nil }
