package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seenimoa/techlens/internal/analysis/fundamental"
	"github.com/seenimoa/techlens/pkg/models"
	"github.com/seenimoa/techlens/pkg/utils"
)

// DefaultYahooBaseURL is the Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// quoteSummaryModules are the quoteSummary modules flattened into fundamentals.
var quoteSummaryModules = []string{
	"financialData",
	"defaultKeyStatistics",
	"summaryDetail",
	"price",
	"assetProfile",
}

// YFinance implements the DataSource interface using Yahoo Finance API.
type YFinance struct {
	baseURL string
	client  *http.Client
	cache   *Cache
	limiter *rate.Limiter
}

// YFinanceOption configures a YFinance source.
type YFinanceOption func(*YFinance)

// WithBaseURL points the source at a different host (tests use httptest).
func WithBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) YFinanceOption {
	return func(y *YFinance) { y.client = c }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps int) YFinanceOption {
	return func(y *YFinance) {
		if rps > 0 {
			y.limiter = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// WithCacheTTL sets how long responses are reused.
func WithCacheTTL(ttl time.Duration) YFinanceOption {
	return func(y *YFinance) { y.cache = NewCache(ttl) }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL: DefaultYahooBaseURL,
		client:  DefaultHTTPClient,
		cache:   NewCache(5 * time.Minute),
		limiter: rate.NewLimiter(rate.Limit(5), 5), // 5 req/s
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// Cache exposes the response cache so a scheduler can flush it between runs.
func (y *YFinance) Cache() *Cache { return y.cache }

// --- Yahoo Finance API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol               string  `json:"symbol"`
	Currency             string  `json:"currency"`
	ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]json.RawMessage `json:"result"`
		Error  *yfError                                `json:"error"`
	} `json:"quoteSummary"`
}

type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yfError) err(ticker string) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	return fmt.Errorf("yfinance API error: %s", e.Description)
}

// summary is the flattened quoteSummary payload.
type summary struct {
	numbers fundamental.Raw
	strings map[string]string
}

// --- Public methods ---

// GetHistory returns daily candles from the Yahoo Finance chart API.
// Closes are split and dividend adjusted when Yahoo supplies adjclose.
func (y *YFinance) GetHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	cacheKey := fmt.Sprintf("hist:%s:%d:%d", ticker, from.Unix(), to.Unix())
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(models.PriceSeries), nil
	}

	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		y.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix(),
	)

	var resp yfChartResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return models.PriceSeries{}, fmt.Errorf("yfinance chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return models.PriceSeries{}, resp.Chart.Error.err(ticker)
	}
	if len(resp.Chart.Result) == 0 {
		return models.PriceSeries{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	series, err := models.NewPriceSeries(ticker, parseYFCandles(resp.Chart.Result[0]))
	if err != nil {
		return models.PriceSeries{}, err
	}

	y.cache.Set(cacheKey, series)
	return series, nil
}

// GetFundamentals returns quoteSummary numbers keyed by Yahoo field name.
func (y *YFinance) GetFundamentals(ctx context.Context, ticker string) (fundamental.Raw, error) {
	s, err := y.quoteSummary(ctx, ticker)
	if err != nil {
		return nil, err
	}
	raw := make(fundamental.Raw, len(s.numbers))
	for k, v := range s.numbers {
		raw[k] = v
	}
	return raw, nil
}

// GetProfile assembles the company profile from the price and assetProfile modules.
func (y *YFinance) GetProfile(ctx context.Context, ticker string) (models.Stock, error) {
	s, err := y.quoteSummary(ctx, ticker)
	if err != nil {
		return models.Stock{}, err
	}
	return models.Stock{
		Ticker:    utils.NormalizeTicker(ticker),
		Name:      coalesce(s.strings["longName"], s.strings["shortName"], ticker),
		Sector:    coalesce(s.strings["sector"], s.strings["industry"]),
		MarketCap: s.numbers["marketCap"],
	}, nil
}

func (y *YFinance) quoteSummary(ctx context.Context, ticker string) (summary, error) {
	cacheKey := "summary:" + ticker
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(summary), nil
	}

	endpoint := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(ticker), strings.Join(quoteSummaryModules, "%2C"),
	)

	var resp yfSummaryResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return summary{}, fmt.Errorf("yfinance quoteSummary %s: %w", ticker, err)
	}
	if resp.QuoteSummary.Error != nil {
		return summary{}, resp.QuoteSummary.Error.err(ticker)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return summary{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	s := flattenSummary(resp.QuoteSummary.Result[0])
	y.cache.SetWithTTL(cacheKey, s, time.Hour)
	return s, nil
}

func (y *YFinance) getJSON(ctx context.Context, endpoint string, v any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := doGet(ctx, y.client, endpoint, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// --- Helpers ---

// flattenSummary merges the quoteSummary modules into one key space.
// Earlier modules win on key collisions, so financialData outranks
// summaryDetail for shared fields.
func flattenSummary(modules map[string]map[string]json.RawMessage) summary {
	s := summary{
		numbers: make(fundamental.Raw),
		strings: make(map[string]string),
	}
	for _, name := range quoteSummaryModules {
		for key, msg := range modules[name] {
			if _, seen := s.numbers[key]; seen {
				continue
			}
			var fv yfFinVal
			if err := json.Unmarshal(msg, &fv); err == nil && fv.Raw != nil {
				s.numbers[key] = *fv.Raw
				continue
			}
			var n float64
			if err := json.Unmarshal(msg, &n); err == nil {
				s.numbers[key] = n
				continue
			}
			var str string
			if err := json.Unmarshal(msg, &str); err == nil {
				if _, seen := s.strings[key]; !seen {
					s.strings[key] = str
				}
			}
		}
	}
	return s
}

// parseYFCandles converts a chart result into date-stamped bars. Bars with
// no close (halted sessions) are dropped.
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	loc := utils.Eastern
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePx := valueAt(q.Close, i)
		if adj := valueAt(adjCloses, i); adj != nil {
			closePx = adj
		}
		if closePx == nil || *closePx <= 0 {
			continue
		}

		y, m, d := time.Unix(ts, 0).In(loc).Date()
		c := models.OHLCV{
			Timestamp: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Close:     *closePx,
		}
		if v := valueAt(q.Open, i); v != nil {
			c.Open = *v
		}
		if v := valueAt(q.High, i); v != nil {
			c.High = *v
		}
		if v := valueAt(q.Low, i); v != nil {
			c.Low = *v
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func valueAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
