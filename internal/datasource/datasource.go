// Package datasource provides the market data the analytics core consumes.
// It defines a common DataSource interface and implements concrete sources
// for local CSV/YAML files and Yahoo Finance, plus risk-free-rate sources
// backed by FRED or a static value.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/seenimoa/techlens/internal/analysis/fundamental"
	"github.com/seenimoa/techlens/pkg/models"
)

// DataSource defines the interface every market data source implements.
type DataSource interface {
	// Name returns the human-readable name of this data source.
	Name() string

	// GetHistory returns daily bars for ticker between from and to, inclusive.
	GetHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error)

	// GetFundamentals returns the provider's raw fundamentals for ticker.
	GetFundamentals(ctx context.Context, ticker string) (fundamental.Raw, error)

	// GetProfile returns basic company information for ticker.
	GetProfile(ctx context.Context, ticker string) (models.Stock, error)
}

// RateSource supplies the annual risk-free rate as a decimal.
type RateSource interface {
	Name() string
	RiskFreeRate(ctx context.Context) (float64, error)
}

// --- Sentinel errors ---

// ErrNotSupported is returned when a data source does not support a method.
var ErrNotSupported = errors.New("operation not supported by this data source")

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultHTTPClient is a pre-configured HTTP client with reasonable timeouts.
var DefaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser. A 429 maps to ErrRateLimited.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/csv, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = DefaultHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		httpErr := &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, httpErr)
		}
		return nil, httpErr
	}

	return resp.Body, nil
}

// --- Simple in-memory cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Flush removes all entries from the cache. The watch loop calls it before
// each scheduled refresh.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// --- Period helpers ---

// ParsePeriod converts a lookback such as "3y", "6mo", "90d" or "2w" into
// a start time relative to now.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	units := []struct {
		suffix string
		apply  func(n int) time.Time
	}{
		{"mo", func(n int) time.Time { return now.AddDate(0, -n, 0) }},
		{"y", func(n int) time.Time { return now.AddDate(-n, 0, 0) }},
		{"w", func(n int) time.Time { return now.AddDate(0, 0, -7*n) }},
		{"d", func(n int) time.Time { return now.AddDate(0, 0, -n) }},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid period %q", period)
		}
		return u.apply(n), nil
	}
	return time.Time{}, fmt.Errorf("invalid period %q: want a number followed by d, w, mo or y", period)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
